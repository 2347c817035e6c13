// Package action is the contract between actions and the environment they
// run in.
//
// An action is a named Func registered at init time. It reaches the outside
// world only through the Toolkit it is handed: running commands through
// Toolkit.Exec and calling the GitHub API through Toolkit.GitHub. NewToolkit
// binds the real capabilities; the harness binds the interceptors instead, so
// the same action code runs unchanged in production and under test.
//
//	func init() {
//		action.Register("release", func(ctx context.Context, tk *action.Toolkit) error {
//			code, err := tk.Exec.Exec(ctx, "git", []string{"tag", "v1"}, nil)
//			...
//		})
//	}
package action
