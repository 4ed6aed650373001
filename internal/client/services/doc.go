// Package services contains the application services of the SkillSwap
// client: the session manager, which owns authentication state, and the
// skill collection controller, which owns the working set of skills shown
// by a view.
//
// Both are safe for concurrent use. Operations report failures as returned
// errors and additionally record a user-facing message in LastError; they
// never panic.
package services
