package transaction

// GetData returns an empty call of the given type to decode into
func GetData(txType TxType) (Data, bool) {
	switch txType {
	case TypeTransfer:
		return &TransferData{}, true
	case TypeRegisterAsset:
		return &RegisterAssetData{}, true
	case TypeSetAssetStatus:
		return &SetAssetStatusData{}, true
	case TypeSubmitProposal:
		return &SubmitProposalData{}, true
	case TypeAcknowledgeProposal:
		return &VoteProposalData{approve: true}, true
	case TypeRejectProposal:
		return &VoteProposalData{approve: false}, true
	case TypeEvalProposalState:
		return &EvalProposalStateData{}, true
	case TypeSubmitPublicKeys:
		return &SubmitPublicKeysData{}, true
	case TypeAcknowledgeBurned:
		return &AcknowledgeBurnedData{}, true
	case TypeWithdrawal:
		return &WithdrawalData{}, true
	case TypeSetQuorumConfiguration:
		return &SetQuorumConfigurationData{}, true
	case TypeSetQuorumStatus:
		return &SetQuorumStatusData{}, true
	case TypeSwap:
		return &SwapData{}, true
	case TypeConfirmSwap:
		return &ConfirmSwapData{}, true
	case TypeCancelSwap:
		return &CancelSwapData{}, true
	case TypeAddMarketMaker:
		return &MarketMakerData{add: true}, true
	case TypeRemoveMarketMaker:
		return &MarketMakerData{add: false}, true
	case TypeSetOracleAccount:
		return &SetOracleAccountData{}, true
	case TypeSetOracleStatus:
		return &SetOracleStatusData{}, true
	case TypeVestedTransfer:
		return &VestedTransferData{}, true
	case TypeClaim:
		return &ClaimData{}, true
	case TypeClaimFor:
		return &ClaimForData{}, true
	case TypeUpdateVestingSchedules:
		return &UpdateVestingSchedulesData{}, true
	case TypeStopVestingSchedules:
		return &StopVestingSchedulesData{}, true
	}

	return nil, false
}
