// Package watch re-runs the export pipeline when its inputs change.
//
// "meshport watch" keeps the export folder current without anyone
// remembering to run the tool: it watches the export manifest and the
// design description for filesystem changes, debounces editor save storms,
// and can additionally fire on a cron schedule for hosts whose document
// versions change without touching watched files.
package watch
