// Package preflight provides readiness checks for the external tools and
// filesystem paths stereomax depends on.
//
// These checks run in two contexts:
//   - The CLI "stereomax status" command renders every result.
//   - The pipeline entry point calls Ready before probing and refuses to
//     start when a required tool or the temp directory is unusable.
package preflight
