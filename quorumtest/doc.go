/*
Package quorumtest provides helpers for testing accounts and contracts:
in memory storage, keys and a set of small mock contracts.
*/
package quorumtest
