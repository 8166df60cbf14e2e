// Package telemetry provides observability for meshport.
//
// Two subpackages cover the tool's needs:
//
//   - logging: structured slog-based logging shared by every command
//   - metrics: Prometheus counters served by the watch command's endpoint
//
// A short-lived CLI run logs and exits; only watch mode keeps a process
// alive long enough for a metrics endpoint to be worth scraping.
package telemetry
