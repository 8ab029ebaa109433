package safe

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/x/guard"
	"github.com/iov-one/quorum/x/modules"
	"github.com/iov-one/quorum/x/owners"
)

// ABI declares the account methods and events on top of the owner, module
// and guard management ones.
const ABI = `[
	{"type":"function","name":"setup","stateMutability":"nonpayable",
	 "inputs":[
		{"name":"_owners","type":"address[]"},
		{"name":"_threshold","type":"uint256"},
		{"name":"to","type":"address"},
		{"name":"data","type":"bytes"},
		{"name":"fallbackHandler","type":"address"},
		{"name":"paymentToken","type":"address"},
		{"name":"payment","type":"uint256"},
		{"name":"paymentReceiver","type":"address"}],
	 "outputs":[]},
	{"type":"function","name":"execTransaction","stateMutability":"payable",
	 "inputs":[
		{"name":"to","type":"address"},
		{"name":"value","type":"uint256"},
		{"name":"data","type":"bytes"},
		{"name":"operation","type":"uint8"},
		{"name":"safeTxGas","type":"uint256"},
		{"name":"baseGas","type":"uint256"},
		{"name":"gasPrice","type":"uint256"},
		{"name":"gasToken","type":"address"},
		{"name":"refundReceiver","type":"address"},
		{"name":"signatures","type":"bytes"}],
	 "outputs":[{"name":"success","type":"bool"}]},
	{"type":"function","name":"execTransactionFromModule","stateMutability":"nonpayable",
	 "inputs":[
		{"name":"to","type":"address"},
		{"name":"value","type":"uint256"},
		{"name":"data","type":"bytes"},
		{"name":"operation","type":"uint8"}],
	 "outputs":[{"name":"success","type":"bool"}]},
	{"type":"function","name":"execTransactionFromModuleReturnData","stateMutability":"nonpayable",
	 "inputs":[
		{"name":"to","type":"address"},
		{"name":"value","type":"uint256"},
		{"name":"data","type":"bytes"},
		{"name":"operation","type":"uint8"}],
	 "outputs":[{"name":"success","type":"bool"},{"name":"returnData","type":"bytes"}]},
	{"type":"function","name":"approveHash","stateMutability":"nonpayable",
	 "inputs":[{"name":"hashToApprove","type":"bytes32"}],"outputs":[]},
	{"type":"function","name":"approvedHashes","stateMutability":"view",
	 "inputs":[{"name":"owner","type":"address"},{"name":"hash","type":"bytes32"}],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"checkSignatures","stateMutability":"view",
	 "inputs":[{"name":"dataHash","type":"bytes32"},{"name":"data","type":"bytes"},{"name":"signatures","type":"bytes"}],
	 "outputs":[]},
	{"type":"function","name":"checkNSignatures","stateMutability":"view",
	 "inputs":[{"name":"dataHash","type":"bytes32"},{"name":"data","type":"bytes"},{"name":"signatures","type":"bytes"},{"name":"requiredSignatures","type":"uint256"}],
	 "outputs":[]},
	{"type":"function","name":"changeMasterCopy","stateMutability":"nonpayable",
	 "inputs":[{"name":"_masterCopy","type":"address"}],"outputs":[]},
	{"type":"function","name":"setFallbackHandler","stateMutability":"nonpayable",
	 "inputs":[{"name":"handler","type":"address"}],"outputs":[]},
	{"type":"function","name":"nonce","stateMutability":"view",
	 "inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getChainId","stateMutability":"view",
	 "inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"VERSION","stateMutability":"view",
	 "inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"domainSeparator","stateMutability":"view",
	 "inputs":[],"outputs":[{"name":"","type":"bytes32"}]},
	{"type":"function","name":"getTransactionHash","stateMutability":"view",
	 "inputs":[
		{"name":"to","type":"address"},
		{"name":"value","type":"uint256"},
		{"name":"data","type":"bytes"},
		{"name":"operation","type":"uint8"},
		{"name":"safeTxGas","type":"uint256"},
		{"name":"baseGas","type":"uint256"},
		{"name":"gasPrice","type":"uint256"},
		{"name":"gasToken","type":"address"},
		{"name":"refundReceiver","type":"address"},
		{"name":"_nonce","type":"uint256"}],
	 "outputs":[{"name":"","type":"bytes32"}]},
	{"type":"function","name":"encodeTransactionData","stateMutability":"view",
	 "inputs":[
		{"name":"to","type":"address"},
		{"name":"value","type":"uint256"},
		{"name":"data","type":"bytes"},
		{"name":"operation","type":"uint8"},
		{"name":"safeTxGas","type":"uint256"},
		{"name":"baseGas","type":"uint256"},
		{"name":"gasPrice","type":"uint256"},
		{"name":"gasToken","type":"address"},
		{"name":"refundReceiver","type":"address"},
		{"name":"_nonce","type":"uint256"}],
	 "outputs":[{"name":"","type":"bytes"}]},
	{"type":"function","name":"getStorageAt","stateMutability":"view",
	 "inputs":[{"name":"offset","type":"uint256"},{"name":"length","type":"uint256"}],
	 "outputs":[{"name":"","type":"bytes"}]},
	{"type":"event","name":"SafeSetup","anonymous":false,
	 "inputs":[
		{"name":"initiator","type":"address","indexed":true},
		{"name":"owners","type":"address[]","indexed":false},
		{"name":"threshold","type":"uint256","indexed":false},
		{"name":"initializer","type":"address","indexed":false},
		{"name":"fallbackHandler","type":"address","indexed":false}]},
	{"type":"event","name":"ExecutionSuccess","anonymous":false,
	 "inputs":[{"name":"txHash","type":"bytes32","indexed":false},{"name":"payment","type":"uint256","indexed":false}]},
	{"type":"event","name":"ExecutionFailure","anonymous":false,
	 "inputs":[{"name":"txHash","type":"bytes32","indexed":false},{"name":"payment","type":"uint256","indexed":false}]},
	{"type":"event","name":"ExecutionFromModuleSuccess","anonymous":false,
	 "inputs":[{"name":"module","type":"address","indexed":true}]},
	{"type":"event","name":"ExecutionFromModuleFailure","anonymous":false,
	 "inputs":[{"name":"module","type":"address","indexed":true}]},
	{"type":"event","name":"ApproveHash","anonymous":false,
	 "inputs":[{"name":"approvedHash","type":"bytes32","indexed":true},{"name":"owner","type":"address","indexed":true}]},
	{"type":"event","name":"SafeReceived","anonymous":false,
	 "inputs":[{"name":"sender","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]},
	{"type":"event","name":"ChangedMasterCopy","anonymous":false,
	 "inputs":[{"name":"masterCopy","type":"address","indexed":false}]},
	{"type":"event","name":"ChangedFallbackHandler","anonymous":false,
	 "inputs":[{"name":"handler","type":"address","indexed":false}]}
]`

var accountABI = quorum.MergeABI(
	quorum.MustParseABI(ABI),
	owners.Definition(),
	modules.Definition(),
	guard.ManagerDefinition(),
)

// Definition returns the complete account ABI.
func Definition() abi.ABI {
	return accountABI
}
