// Package config loads the settings of the actionmock CLI and the mocks files
// it runs actions with.
//
// # Configuration Directory
//
// Settings are read from config.yaml in a single directory, ~/.config/actionmock
// by default or the directory given with --config-path. A missing file means
// defaults:
//
//	logLevel: info
//	serve:
//	  host: localhost
//	  port: 8099
//	watch:
//	  debounce: 200ms
//
// # Mocks Files
//
// A mocks file holds the rules of one run, keyed by interceptor id, plus the
// environment the action runs with. Rule fields use the same names as the
// JSON carried in EXEC_MOCKS and GITHUB_MOCKS:
//
//	mocks:
//	  exec:
//	    - command: ^git push
//	      exitCode: 1
//	      stderr: rejected
//	  github:
//	    - method: GET
//	      uri: /user/repos
//	      responseFixture: fixtures/repos.json
//	env:
//	  GITHUB_REPOSITORY: octo/hello
//	envFiles:
//	  - .env
//
// Problems are reported as ConfigurationError values, collected per file in
// a ConfigurationErrorCollection.
package config
