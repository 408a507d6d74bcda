package schema

// Models returns every table managed by the projector, in migration order
func Models() []interface{} {
	return []interface{}{
		&KeyValueStore{},
		&WatchedContract{},
		&Registry{},
		&ContentManager{},
		&ContentStorage{},
		&AccessControlManager{},
		&SystemsRegistry{},
		&Content{},
		&Asset{},
		&AssetBalance{},
		&AssetFee{},
		&ContractFee{},
		&Approval{},
		&Operator{},
		&Minter{},
		&Account{},
		&Transaction{},
		&MintTransaction{},
		&BurnTransaction{},
		&AddressResolver{},
		&Exchange{},
		&TokenEscrow{},
		&Token{},
		&Order{},
		&OrderFill{},
		&OrderClaimTransaction{},
		&UserRoyalty{},
		&TokenDayData{},
		&AccountDayData{},
		&Craft{},
		&Salvage{},
		&Recipe{},
		&SalvageableAsset{},
		&CraftTransaction{},
		&SalvageTransaction{},
		&FungibleToken{},
		&TokenSupply{},
		&TokenBalance{},
	}
}
