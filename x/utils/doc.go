/*
Package utils contains decorators every contract frame may be wrapped
with: panic recovery, logging, action tagging and storage write tracking.

	host.WithDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		utils.NewActionTagger(),
	)
*/
package utils
