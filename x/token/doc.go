/*
Package token implements a minimal fungible token.

Accounts may pay execution fees in a token instead of the native unit. The
token follows the common transfer interface: balances, allowances and
Transfer/Approval events, with the whole supply minted to a holder at
deployment.
*/
package token
