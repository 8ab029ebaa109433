/*
Package proxy deploys accounts as cheap proxies of a shared singleton.

A proxy keeps the address of its singleton in slot 0 and delegates every
call to it. The factory deploys proxies at deterministic addresses: the
address depends on the factory, the singleton, the initializer and a salt
nonce only, so it can be computed before deployment with
CalculateAddress.
*/
package proxy
