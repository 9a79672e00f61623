// Package action defines the closed set of state transition requests.
//
// Every change to the state store is an Action wrapped in a Wrapper and sent
// through the engine's dispatch queue. There is no other write path. Action
// is sealed: only the variants declared here implement it, so reducers can
// switch exhaustively.
package action
