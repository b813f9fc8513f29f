// Package services contains the client application services: credential
// caching and re-authentication (AuthService), local profile editing
// (ProfileService) and face enrollment and login (BiometricService).
//
// Services are constructed once per process and injected into the session
// coordinator and the CLI. They never keep state of their own beyond their
// collaborators, so tests substitute fakes for the remote store and the
// camera pipeline and run against a real temporary SQLite store.
package services
