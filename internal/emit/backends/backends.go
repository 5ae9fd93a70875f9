// Package backends registers every built-in backend with the emit registry.
// Import it for its side effects.
package backends

import (
	_ "github.com/leapstack-labs/leapgen/internal/emit/django"    // register django backend
	_ "github.com/leapstack-labs/leapgen/internal/emit/fastapi"   // register fastapi backend
	_ "github.com/leapstack-labs/leapgen/internal/emit/openapi"   // register openapi backend
	_ "github.com/leapstack-labs/leapgen/internal/emit/smoketest" // register smoketest backend
	_ "github.com/leapstack-labs/leapgen/internal/emit/sqlddl"    // register sql backend
)
