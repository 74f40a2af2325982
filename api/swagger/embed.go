// Package swagger holds the OpenAPI document for the /users endpoints.
package swagger

import _ "embed"

// UsersJSON is the OpenAPI 2.0 document served at /openapi.json.
//
//go:embed users.swagger.json
var UsersJSON []byte
