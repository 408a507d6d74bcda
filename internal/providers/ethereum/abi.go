package ethereum

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// eventsJSON is the ABI of every event the projector consumes
const eventsJSON = `[
 {"type":"event","name":"ContentManagerRegistered","inputs":[
  {"name":"owner","type":"address","indexed":true},
  {"name":"contentManager","type":"address","indexed":true}]},
 {"type":"event","name":"CraftRegistered","inputs":[
  {"name":"craft","type":"address","indexed":true},
  {"name":"manager","type":"address","indexed":true}]},
 {"type":"event","name":"SalvageRegistered","inputs":[
  {"name":"salvage","type":"address","indexed":true},
  {"name":"manager","type":"address","indexed":true}]},
 {"type":"event","name":"OwnershipTransferred","inputs":[
  {"name":"previousOwner","type":"address","indexed":true},
  {"name":"newOwner","type":"address","indexed":true}]},

 {"type":"event","name":"TransferSingle","inputs":[
  {"name":"operator","type":"address","indexed":true},
  {"name":"from","type":"address","indexed":true},
  {"name":"to","type":"address","indexed":true},
  {"name":"id","type":"uint256","indexed":false},
  {"name":"value","type":"uint256","indexed":false}]},
 {"type":"event","name":"TransferBatch","inputs":[
  {"name":"operator","type":"address","indexed":true},
  {"name":"from","type":"address","indexed":true},
  {"name":"to","type":"address","indexed":true},
  {"name":"ids","type":"uint256[]","indexed":false},
  {"name":"values","type":"uint256[]","indexed":false}]},
 {"type":"event","name":"Mint","inputs":[
  {"name":"operator","type":"address","indexed":true},
  {"name":"data","type":"tuple","indexed":false,"components":[
   {"name":"to","type":"address"},
   {"name":"tokenIds","type":"uint256[]"},
   {"name":"amounts","type":"uint256[]"}]}]},
 {"type":"event","name":"Burn","inputs":[
  {"name":"operator","type":"address","indexed":true},
  {"name":"data","type":"tuple","indexed":false,"components":[
   {"name":"account","type":"address"},
   {"name":"tokenIds","type":"uint256[]"},
   {"name":"amounts","type":"uint256[]"}]}]},
 {"type":"event","name":"ApprovalForAll","inputs":[
  {"name":"account","type":"address","indexed":true},
  {"name":"operator","type":"address","indexed":true},
  {"name":"approved","type":"bool","indexed":false}]},

 {"type":"event","name":"AssetsAdded","inputs":[
  {"name":"parent","type":"address","indexed":true},
  {"name":"assets","type":"tuple[]","indexed":false,"components":[
   {"name":"tokenId","type":"uint256"},
   {"name":"maxSupply","type":"uint256"},
   {"name":"fees","type":"tuple[]","components":[
    {"name":"account","type":"address"},
    {"name":"rate","type":"uint24"}]}]}]},
 {"type":"event","name":"ContractRoyaltiesUpdated","inputs":[
  {"name":"parent","type":"address","indexed":true},
  {"name":"fees","type":"tuple[]","indexed":false,"components":[
   {"name":"account","type":"address"},
   {"name":"rate","type":"uint24"}]}]},
 {"type":"event","name":"TokenRoyaltiesUpdated","inputs":[
  {"name":"parent","type":"address","indexed":true},
  {"name":"tokenId","type":"uint256","indexed":true},
  {"name":"fees","type":"tuple[]","indexed":false,"components":[
   {"name":"account","type":"address"},
   {"name":"rate","type":"uint24"}]}]},
 {"type":"event","name":"HiddenUriUpdated","inputs":[
  {"name":"parent","type":"address","indexed":true},
  {"name":"id","type":"uint256","indexed":true},
  {"name":"version","type":"uint256","indexed":true}]},
 {"type":"event","name":"PublicUriUpdated","inputs":[
  {"name":"parent","type":"address","indexed":true},
  {"name":"id","type":"uint256","indexed":true},
  {"name":"version","type":"uint256","indexed":true}]},

 {"type":"event","name":"RoleGranted","inputs":[
  {"name":"role","type":"bytes32","indexed":true},
  {"name":"account","type":"address","indexed":true},
  {"name":"sender","type":"address","indexed":true}]},
 {"type":"event","name":"RoleRevoked","inputs":[
  {"name":"role","type":"bytes32","indexed":true},
  {"name":"account","type":"address","indexed":true},
  {"name":"sender","type":"address","indexed":true}]},
 {"type":"event","name":"RegisteredSystemsUpdated","inputs":[
  {"name":"contentContract","type":"address","indexed":true},
  {"name":"operators","type":"tuple[]","indexed":false,"components":[
   {"name":"operator","type":"address"},
   {"name":"approved","type":"bool"}]}]},

 {"type":"event","name":"AddressRegistered","inputs":[
  {"name":"id","type":"bytes4","indexed":true},
  {"name":"contractAddress","type":"address","indexed":true}]},
 {"type":"event","name":"OrderPlaced","inputs":[
  {"name":"orderId","type":"uint256","indexed":true},
  {"name":"order","type":"tuple","indexed":false,"components":[
   {"name":"asset","type":"tuple","components":[
    {"name":"contentAddress","type":"address"},
    {"name":"tokenId","type":"uint256"}]},
   {"name":"owner","type":"address"},
   {"name":"token","type":"address"},
   {"name":"price","type":"uint256"},
   {"name":"amount","type":"uint256"},
   {"name":"isBuyOrder","type":"bool"}]}]},
 {"type":"event","name":"OrdersFilled","inputs":[
  {"name":"from","type":"address","indexed":true},
  {"name":"orderIds","type":"uint256[]","indexed":false},
  {"name":"amounts","type":"uint256[]","indexed":false},
  {"name":"asset","type":"tuple","indexed":false,"components":[
   {"name":"contentAddress","type":"address"},
   {"name":"tokenId","type":"uint256"}]},
  {"name":"token","type":"address","indexed":false},
  {"name":"totalAssetsAmount","type":"uint256","indexed":false},
  {"name":"volume","type":"uint256","indexed":false}]},
 {"type":"event","name":"OrdersDeleted","inputs":[
  {"name":"owner","type":"address","indexed":true},
  {"name":"orderIds","type":"uint256[]","indexed":false}]},
 {"type":"event","name":"OrdersClaimed","inputs":[
  {"name":"owner","type":"address","indexed":true},
  {"name":"orderIds","type":"uint256[]","indexed":false}]},
 {"type":"event","name":"AddedTokenSupport","inputs":[
  {"name":"token","type":"address","indexed":true}]},
 {"type":"event","name":"ClaimedRoyalties","inputs":[
  {"name":"owner","type":"address","indexed":true},
  {"name":"tokens","type":"address[]","indexed":false},
  {"name":"amounts","type":"uint256[]","indexed":false}]},

 {"type":"event","name":"AssetsCrafted","inputs":[
  {"name":"user","type":"address","indexed":true},
  {"name":"id","type":"uint256","indexed":true},
  {"name":"amountSucceeded","type":"uint256","indexed":false}]},
 {"type":"event","name":"RecipeUpdated","inputs":[
  {"name":"operator","type":"address","indexed":true},
  {"name":"recipes","type":"tuple[]","indexed":false,"components":[
   {"name":"id","type":"uint256"},
   {"name":"enabled","type":"bool"}]}]},
 {"type":"event","name":"RecipeEnabled","inputs":[
  {"name":"id","type":"uint256","indexed":true},
  {"name":"enabled","type":"bool","indexed":false}]},
 {"type":"event","name":"AssetSalvaged","inputs":[
  {"name":"user","type":"address","indexed":true},
  {"name":"asset","type":"tuple","indexed":false,"components":[
   {"name":"content","type":"address"},
   {"name":"tokenId","type":"uint256"}]},
  {"name":"amount","type":"uint256","indexed":false}]},
 {"type":"event","name":"AssetSalvagedBatch","inputs":[
  {"name":"user","type":"address","indexed":true},
  {"name":"assets","type":"tuple[]","indexed":false,"components":[
   {"name":"content","type":"address"},
   {"name":"tokenId","type":"uint256"}]},
  {"name":"amounts","type":"uint256[]","indexed":false}]},
 {"type":"event","name":"SalvageableAssetsUpdated","inputs":[
  {"name":"operator","type":"address","indexed":true},
  {"name":"assets","type":"tuple[]","indexed":false,"components":[
   {"name":"asset","type":"tuple","components":[
    {"name":"content","type":"address"},
    {"name":"tokenId","type":"uint256"}]}]},
  {"name":"ids","type":"uint256[]","indexed":false}]},

 {"type":"event","name":"TokenCreated","inputs":[
  {"name":"addr","type":"address","indexed":true},
  {"name":"id","type":"uint256","indexed":true},
  {"name":"name","type":"string","indexed":false},
  {"name":"symbol","type":"string","indexed":false},
  {"name":"supply","type":"uint256","indexed":false}]},
 {"type":"event","name":"Transfer","inputs":[
  {"name":"from","type":"address","indexed":true},
  {"name":"to","type":"address","indexed":true},
  {"name":"value","type":"uint256","indexed":false}]}
]`

// readerJSON is the ABI of the view functions the projector calls
const readerJSON = `[
 {"type":"function","name":"content","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
 {"type":"function","name":"contentStorage","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
 {"type":"function","name":"accessControlManager","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
 {"type":"function","name":"systemsRegistry","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
 {"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
 {"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
 {"type":"function","name":"contractUri","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
 {"type":"function","name":"uri","stateMutability":"view","inputs":[{"name":"id","type":"uint256"}],"outputs":[{"name":"","type":"string"}]},
 {"type":"function","name":"contractRoyalties","stateMutability":"view","inputs":[],"outputs":[
  {"name":"","type":"tuple[]","components":[
   {"name":"account","type":"address"},
   {"name":"rate","type":"uint24"}]}]},
 {"type":"function","name":"MINTER_ROLE","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bytes32"}]}
]`

var (
	eventsABI = mustParseABI(eventsJSON)
	readerABI = mustParseABI(readerJSON)
)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return parsed
}

// EventsABI returns the ABI of the projected events
func EventsABI() abi.ABI {
	return eventsABI
}

// ReaderABI returns the ABI of the view functions read by ContractReader
func ReaderABI() abi.ABI {
	return readerABI
}
