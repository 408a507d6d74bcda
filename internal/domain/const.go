package domain

const (
	// ZeroAddress is the "no party" sentinel used in transfer, mint and burn legs
	ZeroAddress = "0x0000000000000000000000000000000000000000"

	// SecondsPerDay is the width of a daily aggregate bucket
	SecondsPerDay int64 = 86400

	// Gateway constants
	DefaultIPFSGateway    = "https://ipfs.io"
	DefaultArweaveGateway = "https://arweave.net"
)

// Interface ids announced by AddressRegistered
const (
	InterfaceIDExchange    = "0xeef64103"
	InterfaceIDErc20Escrow = "0x29a264aa"
)

// KindForInterfaceID maps a registered interface id to the kind of the registered contract
func KindForInterfaceID(id string) (ContractKind, bool) {
	switch id {
	case InterfaceIDExchange:
		return KindExchange, true
	case InterfaceIDErc20Escrow:
		return KindErc20Escrow, true
	default:
		return "", false
	}
}

// OrderStatus is the state of an exchange order
type OrderStatus string

const (
	OrderStatusReady           OrderStatus = "Ready"
	OrderStatusPartiallyFilled OrderStatus = "PartiallyFilled"
	OrderStatusFilled          OrderStatus = "Filled"
	OrderStatusClaimed         OrderStatus = "Claimed"
	OrderStatusCancelled       OrderStatus = "Cancelled"
)

// Open reports whether an order still counts as active
func (s OrderStatus) Open() bool {
	return s == OrderStatusReady || s == OrderStatusPartiallyFilled
}

// OrderType is the side of an exchange order
type OrderType string

const (
	OrderTypeBuy  OrderType = "Buy"
	OrderTypeSell OrderType = "Sell"
)

// OrderTypeFor returns the order type for the isBuyOrder flag
func OrderTypeFor(isBuyOrder bool) OrderType {
	if isBuyOrder {
		return OrderTypeBuy
	}
	return OrderTypeSell
}
