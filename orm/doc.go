/*
Package orm provides storage structures laid out on slot addressed account
storage.

LinkedSet keeps a set of addresses as a singly linked list threaded through
a mapping(address => address). A reserved sentinel address is both the head
and the tail of the list. Insertion happens at the head, and removal requires
the caller to name the predecessor of the removed member, so both are O(1)
and never shift other entries. Naming a wrong predecessor fails the operation
and leaves the list untouched.
*/
package orm
