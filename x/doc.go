/*
Package x contains the helpers shared by account extensions: the
authentication gate of self-administered methods and event emission.

Subpackages implement the account components, each registering its
methods on a quorum.Router with RegisterRoutes.
*/
package x
