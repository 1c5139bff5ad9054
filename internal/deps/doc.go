// Package deps checks that the external media tools are installed.
package deps
