/*
Package quorum defines the common interfaces that tie together the host
ledger and the contracts that run on it, as well as implementations of some
of the simpler shared components.

Contracts are Go values implementing Contract. The host hands every running
contract an Env describing the current call frame: whose storage it works
on, who called it, how much gas is left, and how to reach other accounts.
Storage is slot addressed so that a contract's layout can be reasoned about
independently of the code that reads it.

We pass context through context.Context between host, decorators and
contracts. To do so, quorum defines some common keys to store info, such as
the chain id and the logger. For every XYZ of type T that we want to support
in the context there are two functions:

  WithXYZ(context.Context, T) context.Context
  GetXYZ(context.Context) T

WithXYZ panics if the value was previously set to avoid lower-level code
overwriting the value.
*/
package quorum
