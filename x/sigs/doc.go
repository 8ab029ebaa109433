/*
Package sigs verifies the signature bundle authorizing an execution.

A bundle is a concatenation of 65 byte windows, one per signer, sorted by
ascending signer address. The last byte of a window is a marker selecting
the kind of signature:

  0      contract signature: r holds the signer, s the offset of a length
         prefixed payload appended after all windows
  1      pre-approved hash: r holds the signer
  27, 28 signature over the digest
  31, 32 signature over the digest prefixed like a personal message

Signers must be owners and strictly increasing, which also rules out
duplicates. Only the first required windows are consulted.
*/
package sigs
