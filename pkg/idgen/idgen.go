package idgen

import (
	"fmt"
	"sync"
	"time"

	"github.com/sony/sonyflake"
)

// Generator is a monotonically-increasing ID generator backed by
// Sonyflake, used to stamp audit log rows and dispatch correlation
// IDs with globally unique, roughly time-ordered identifiers.
type Generator struct {
	sf *sonyflake.Sonyflake
}

var (
	defaultGenerator     *Generator
	defaultGeneratorOnce sync.Once
)

func initDefaultGenerator() {
	defaultGenerator = New()
}

// DefaultGenerator returns the process-wide generator, created on
// first use.
func DefaultGenerator() *Generator {
	defaultGeneratorOnce.Do(initDefaultGenerator)
	return defaultGenerator
}

// New creates a Generator with its own Sonyflake epoch.
func New() *Generator {
	sf := sonyflake.NewSonyflake(sonyflake.Settings{
		StartTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if sf == nil {
		sf = sonyflake.NewSonyflake(sonyflake.Settings{
			StartTime: time.Now(),
		})
	}

	return &Generator{sf: sf}
}

func (g *Generator) generateIDWithPrefix(prefix, errorMsg string) (string, error) {
	id, err := g.sf.NextID()
	if err != nil {
		return "", fmt.Errorf("%s: %w", errorMsg, err)
	}
	return fmt.Sprintf("%s-%d", prefix, id), nil
}

// GenerateAuditID returns an audit log row identifier (format:
// "audit-<id>").
func (g *Generator) GenerateAuditID() (string, error) {
	return g.generateIDWithPrefix("audit", "generate audit ID")
}

// GenerateCorrelationID returns a per-dispatch correlation identifier
// (format: "disp-<id>") used to tie a rejected client request to its
// audit log entry and any log lines emitted while handling it.
func (g *Generator) GenerateCorrelationID() (string, error) {
	return g.generateIDWithPrefix("disp", "generate correlation ID")
}

// GenerateID returns a bare monotonically-increasing ID with no
// prefix.
func (g *Generator) GenerateID() (uint64, error) {
	return g.sf.NextID()
}

// GenerateAuditID uses the package default generator.
func GenerateAuditID() (string, error) {
	return DefaultGenerator().GenerateAuditID()
}

// GenerateCorrelationID uses the package default generator.
func GenerateCorrelationID() (string, error) {
	return DefaultGenerator().GenerateCorrelationID()
}

// GenerateID uses the package default generator.
func GenerateID() (uint64, error) {
	return DefaultGenerator().GenerateID()
}
