// Package mcp exposes the pattern engine over the Model Context Protocol
// on stdio: batch scanning, oracle marking, amplified search, attention
// weighting, and store status.
package mcp
