// Package harness runs registered actions in a child process with their
// capabilities intercepted.
//
// The parent side is Run: it serializes mock rules into one environment
// variable per interceptor (EXEC_MOCKS, GITHUB_MOCKS), re-executes a binary
// with the loader marker set and captures what the child writes.
//
// The child side is the loader. A binary opts in by calling RunMain from
// TestMain, or Main from main. When the marker is present the loader
// installs every interceptor, registers the rules found in the environment
// and runs each argument as a registered action with a Toolkit bound to the
// interceptors:
//
//	func TestMain(m *testing.M) {
//		harness.RunMain(m)
//	}
//
//	func TestRelease(t *testing.T) {
//		res := harness.Run(context.Background(), "release", harness.Options{
//			Mocks: map[string]any{
//				"exec": []map[string]any{{"command": "git tag", "exitCode": 0}},
//			},
//		})
//		assert.Equal(t, 0, res.Status)
//	}
package harness
