package types

import (
	"time"

	"github.com/google/uuid"
)

// WorkflowStage identifies one step of the contract preparation wizard.
type WorkflowStage string

const (
	StageUpload WorkflowStage = "upload"
	StageEdit   WorkflowStage = "edit"
	StageForm   WorkflowStage = "form"
	StageLink   WorkflowStage = "link"
	StageSign   WorkflowStage = "sign"
)

// WorkflowStages lists the stages in wizard display order.
var WorkflowStages = []WorkflowStage{StageUpload, StageEdit, StageForm, StageLink, StageSign}

// Contract processing statuses, recorded as an audit trail. Status never gates
// stage navigation; only the presence of a contract id does.
const (
	ContractStatusUploaded        = "uploaded"
	ContractStatusFieldsEdited    = "fields_edited"
	ContractStatusFormBuilt       = "form_built"
	ContractStatusLinkGenerated   = "link_generated"
	ContractStatusSentToSignature = "sent_to_signature"
)

// Contract is a document moving through the e-signature preparation wizard.
type Contract struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	FileName  string    `json:"file_name" example:"contrato-prestacao-servicos.pdf"`
	Status    string    `json:"status" example:"uploaded"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WorkflowState reports which wizard stages are currently enterable and which
// one is active. Unlocked stages may be revisited in any order; there is no
// forward-only progression.
type WorkflowState struct {
	ContractID  *uuid.UUID             `json:"contract_id,omitempty"`
	ActiveStage WorkflowStage          `json:"active_stage"`
	Unlocked    map[WorkflowStage]bool `json:"unlocked"`
}
