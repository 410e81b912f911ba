// Package authsdk is the Go client for the Payday authentication service.
//
// The low-level surface is Client (unauthenticated endpoints) and Session
// (authenticated endpoints). On top of those sit three explicit flow state
// machines, LoginFlow, TOTPEnrollFlow and EmailEnrollFlow, which reject any
// call made out of order instead of leaving the outcome to implicit state.
//
// Sessions can be persisted through a CredentialStore. Only the signed token
// and the account profile are ever stored; tickets, one-time codes and backup
// codes stay in memory.
package authsdk
