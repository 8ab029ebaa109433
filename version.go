package quorum

// Version is the version of the account implementation. It is part of the
// account ABI and changes whenever the storage layout is extended.
const Version = "1.3.0"
