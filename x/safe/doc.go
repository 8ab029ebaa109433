/*
Package safe implements the multi-owner account contract.

A single instance of Account, the singleton, is deployed once per chain.
Every account is a proxy delegating to it, so that all accounts share the
code while each keeps its own storage:

	slot 0   singleton the proxy delegates to
	slot 1   enabled modules
	slot 2   owners
	slot 3   owner count
	slot 4   threshold
	slot 5   nonce
	slot 8   hashes approved on-chain

An execution runs once the owners signed its digest. The digest binds the
transaction to the chain, the account and the current nonce. The nonce
advances before the sub-call, so that a bundle authorizes at most one
execution even when the sub-call fails. A failing sub-call does not
revert the execution, the submitter is still refunded.

Administrative methods, like adding an owner, are accepted only from the
account itself, that is, through an execution.
*/
package safe
