/*
Package multisend batches calls into a single execution.

A batch is a packed concatenation of records:

	operation  1 byte, 0 call or 1 delegate call
	to         20 bytes, the zero address stands for the executing account
	value      32 bytes
	length     32 bytes
	data       length bytes

MultiSend must be delegate called by an account, so that every record
runs as the account. The first failing record reverts the whole batch.
MultiSendCallOnly refuses delegate call records, which makes it safe to
allow for any account.
*/
package multisend
