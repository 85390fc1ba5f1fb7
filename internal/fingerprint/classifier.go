// Package fingerprint derives stable grouping keys from parsed traces or,
// failing that, from location and message heuristics.
package fingerprint

import "strings"

// DefaultFrameworkPrefixes covers the standard library, logging, ORM, web
// framework, and serialization namespaces excluded when looking for user
// code frames.
var DefaultFrameworkPrefixes = []string{
	"java.",
	"javax.",
	"sun.",
	"com.sun.",
	"jdk.",
	"org.springframework.",
	"org.apache.",
	"org.hibernate.",
	"org.slf4j.",
	"ch.qos.logback.",
	"com.zaxxer.hikari.",
	"io.netty.",
	"reactor.",
	"com.fasterxml.jackson.",
}

// Classifier distinguishes framework/library frames from user frames by
// class-name prefix. The prefix set is injected so tests and deployments
// can supply their own namespaces.
type Classifier struct {
	prefixes []string
}

// NewClassifier creates a Classifier with the given prefixes. Nil falls
// back to DefaultFrameworkPrefixes.
func NewClassifier(prefixes []string) *Classifier {
	if prefixes == nil {
		prefixes = DefaultFrameworkPrefixes
	}
	return &Classifier{prefixes: prefixes}
}

// IsFrameworkFrame reports whether the class name belongs to a known
// framework namespace. An absent class name is conservatively classified
// as framework.
func (c *Classifier) IsFrameworkFrame(className string) bool {
	if className == "" {
		return true
	}
	for _, p := range c.prefixes {
		if strings.HasPrefix(className, p) {
			return true
		}
	}
	return false
}
