// Package validator collects validation issues for user-authored mcpm
// inputs: the tool config, project state and custom bundle definitions.
//
// Checks never stop at the first problem. Every issue is recorded with a
// severity so a command can print the full list before refusing to act:
//
//	res := validator.Bundle(store, "frontend", []string{"github", "bogus"})
//	if res.HasErrors() {
//		_ = validator.NewReporter(os.Stderr, validator.FormatText).Report(res)
//	}
package validator
