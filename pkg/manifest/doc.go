// Package manifest loads and validates the JSON export manifest.
//
// The manifest lives next to the exported meshes and describes which design
// components to export, where to write them, and how to orient them:
//
//	{
//	  "v": 1,
//	  "fmt": "stl",
//	  "components": [
//	    {"name": "Case Top", "to": "case_top", "up": "-z"},
//	    {"name": "Foot", "to": "foot", "count": 4}
//	  ]
//	}
//
// The top-level "fmt" is the default format for components that do not set
// their own. An omitted "up" defaults to "z" (already canonical, identity
// rotation). An omitted "count" means the effective copy count is derived
// from the component's instance count in the live design.
//
// Loading follows parse -> defaults -> validate. Validation collects every
// field error before reporting, so a manifest with three bad entries is
// fixed in one round trip rather than three.
package manifest
