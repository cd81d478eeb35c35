package data

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitdbScripts(t *testing.T) {
	for _, table := range []string{"brands", "car_types", "cars", "preferences", "preference_brands", "preference_car_types", "recommendation_records", "favorites"} {
		assert.Contains(t, InitdbMariaDBTables, "CREATE TABLE IF NOT EXISTS "+table, table)
	}
	assert.Contains(t, InitdbMariaDBTables, "idx_user_car")
	assert.Contains(t, InitdbMariaDBTables, "idx_fav_user_car")

	grants := InitdbMariaDBPrivileges("carmart_app")
	assert.Contains(t, grants, "'carmart_app'@'%'")
	assert.False(t, strings.Contains(grants, "{{USER}}"))
}
