/*
Package owners keeps the owner set and the signature threshold of an
account.

Owners form a linked set rooted at storage slot 2, the owner count lives in
slot 3 and the threshold in slot 4. A zero threshold means the account was
never set up. After setup, the threshold is always between one and the
number of owners.
*/
package owners
