package arbabi

//nolint:golint
import (
	_ "embed"

	"github.com/ethereum/go-ethereum/common"

	"github.com/swapr/bridge-tracker/contract/abi"
)

//go:embed inbox.json
var inboxJSONABI string

//go:embed arb_sys.json
var arbSysJSONABI string

//go:embed node_interface.json
var nodeInterfaceJSONABI string

//go:embed outbox.json
var outboxJSONABI string

//go:embed outbox_entry.json
var outboxEntryJSONABI string

//go:embed arb_retryable_tx.json
var arbRetryableTxJSONABI string

//go:embed l1_gateway_router.json
var l1GatewayRouterJSONABI string

//go:embed l2_gateway_router.json
var l2GatewayRouterJSONABI string

//go:embed erc20.json
var erc20JSONABI string

const (
	InboxMessageDelivered           = "event InboxMessageDelivered(uint256 indexed messageNum, bytes data)"
	InboxMessageDeliveredFromOrigin = "event InboxMessageDeliveredFromOrigin(uint256 indexed messageNum)"
	L2ToL1Transaction               = "event L2ToL1Transaction(address caller, address indexed destination, uint256 indexed uniqueId, uint256 indexed batchNumber, uint256 indexInBatch, uint256 arbBlockNum, uint256 ethBlockNum, uint256 timestamp, uint256 callvalue, bytes data)"
)

// Precompiles available on every Arbitrum chain.
var (
	ArbSysAddress         = common.HexToAddress("0x0000000000000000000000000000000000000064")
	ArbRetryableTxAddress = common.HexToAddress("0x000000000000000000000000000000000000006E")
	NodeInterfaceAddress  = common.HexToAddress("0x00000000000000000000000000000000000000C8")
)

var (
	InboxABI           = abi.MustReadABI(inboxJSONABI)
	ArbSysABI          = abi.MustReadABI(arbSysJSONABI)
	NodeInterfaceABI   = abi.MustReadABI(nodeInterfaceJSONABI)
	OutboxABI          = abi.MustReadABI(outboxJSONABI)
	OutboxEntryABI     = abi.MustReadABI(outboxEntryJSONABI)
	ArbRetryableTxABI  = abi.MustReadABI(arbRetryableTxJSONABI)
	L1GatewayRouterABI = abi.MustReadABI(l1GatewayRouterJSONABI)
	L2GatewayRouterABI = abi.MustReadABI(l2GatewayRouterJSONABI)
	ERC20ABI           = abi.MustReadABI(erc20JSONABI)

	InboxMessageDeliveredEventSignature           = InboxABI.Events["InboxMessageDelivered"].ID
	InboxMessageDeliveredFromOriginEventSignature = InboxABI.Events["InboxMessageDeliveredFromOrigin"].ID
	L2ToL1TransactionEventSignature               = ArbSysABI.Events["L2ToL1Transaction"].ID
)
