// Package fuzztests houses Go fuzz harnesses for the value layer: number
// boxing, string interning and bigint literal parsing. They guard against
// fatal errors, leaks and lossy round trips on arbitrary inputs.
package fuzztests
