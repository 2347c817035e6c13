// Package mock holds the pieces shared by the actionmock interceptors.
//
// An interceptor replaces one capability of an action (running commands,
// calling the GitHub API) with a fake driven by an ordered list of rules. The
// concrete interceptors live in the subpackages:
//
//   - execmock: fakes command execution (identifier "exec")
//   - githubmock: fakes the GitHub REST API behind a network gate (identifier "github")
//   - gate: the network gate that routes requests for the API root to a responder
//
// Rules cross the process boundary as JSON in one environment variable per
// interceptor, named after the interceptor identifier:
//
//	EXEC_MOCKS='[{"command":"git push","exitCode":1}]'
//	GITHUB_MOCKS='[{"method":"GET","uri":"/user/repos","responseFixture":"testdata/repos.json"}]'
//
// Patterns in rules are regular expressions searched anywhere in the call
// signature. Newer rules take precedence over older ones, and a rule with a
// count stops matching once it has answered that many calls.
package mock
