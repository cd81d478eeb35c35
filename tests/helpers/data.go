// data.go
//
// A used-car catalog, preference and recommendation data service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of carmart.
// carmart is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// carmart is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with carmart.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package helpers

import (
	"bytes"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

var httpClient = &http.Client{Timeout: 15 * time.Second}

// Identity is sent with a request. Cookie is used against a live authorizer,
// UserID and Roles only when the service runs with AUTHZ_DISABLED.
type Identity struct {
	Cookie string
	UserID string
	Roles  string
}

// DoJSON sends a request with an optional JSON body and identity
func DoJSON(t *testing.T, method, url string, body any, id *Identity) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Api-Version", "1.0.0")

	if id != nil {
		if id.Cookie != "" {
			req.AddCookie(&http.Cookie{Name: "cookie_session", Value: id.Cookie})
		}
		if id.UserID != "" {
			req.Header.Set("X-User-Id", id.UserID)
		}
		if id.Roles != "" {
			req.Header.Set("X-User-Roles", id.Roles)
		}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	return resp
}

// Get is DoJSON without a body
func Get(t *testing.T, url string, id *Identity) *http.Response {
	t.Helper()
	return DoJSON(t, http.MethodGet, url, nil, id)
}
