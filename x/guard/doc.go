/*
Package guard lets an account install a single guard contract that
inspects every execution.

The guard is called before the sub-call with all transaction parameters,
the signature bundle and the sender, and after it with the digest and the
outcome. A guard that fails the first hook vetoes the execution. A guard
must declare its interface through ERC-165 before it can be installed.

Two guards are provided: DelegateCallGuard refuses delegate calls to
unknown targets and AllowlistGuard limits every account to the targets it
allowed itself.
*/
package guard
