// Package idgen provides an incrementing ID generator.
//
// IDs are generated with the Sonyflake algorithm, an improved variant
// of Snowflake that produces IDs which are:
//   - globally unique
//   - time-ordered (increasing)
//   - 64-bit integers
//   - distributed-generation friendly
//
// Generated ID formats:
//   - audit row ID: audit-{increasing number}
//   - dispatch correlation ID: disp-{increasing number}
//
// Usage:
//
// Option one: package-level convenience functions (recommended, uses
// the default generator)
//
//	// generate an audit row ID
//	auditID, err := idgen.GenerateAuditID()
//	// auditID: "audit-1234567890"
//
//	// generate a dispatch correlation ID
//	corrID, err := idgen.GenerateCorrelationID()
//	// corrID: "disp-1234567891"
//
// Option two: the default generator directly
//
//	gen := idgen.DefaultGenerator()
//	auditID, err := gen.GenerateAuditID()
//
// Option three: a generator of your own
//
//	gen := idgen.New()
//	auditID, err := gen.GenerateAuditID()
package idgen
