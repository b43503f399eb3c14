// Package utils holds small conversion helpers for loosely typed payloads, such as
// WeRead fields that arrive as a number in one endpoint and a string in another.
package utils
