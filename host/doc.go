/*
Package host implements the ledger accounts and contracts run on.

A Chain keeps balances, code and slot addressed storage of every account in a
KVStore and executes messages against it. Each message is processed in a
single critical section. Every call frame runs on its own cache wrap of the
parent frame store: when the frame returns an error, all its writes, value
transfers and logs are dropped, otherwise they are merged into the parent.

Contracts are Go values implementing quorum.Contract. They are bound to code
through a Registry of artifacts: deploying the creation code of an artifact
stores its runtime code at the new address, and calling an address with
that runtime code runs the artifact contract.

Gas is metered per frame. Storage access, calls, deployments and logs are
charged according to a GasSchedule, and a sub-call never receives more than
all but one 64th of the gas left in its caller.
*/
package host
