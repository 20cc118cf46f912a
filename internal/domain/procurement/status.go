package procurement

// RequestStatus represents the status of a purchase request
type RequestStatus string

const (
	RequestStatusPending             RequestStatus = "Pending"
	RequestStatusClarificationNeeded RequestStatus = "Clarification Needed"
	RequestStatusInReview            RequestStatus = "In Review"
	RequestStatusApproved            RequestStatus = "Approved"
	RequestStatusRejected            RequestStatus = "Rejected"
	RequestStatusWithdrawn           RequestStatus = "Withdrawn"
)

// AllRequestStatuses returns the six statuses in workflow order
func AllRequestStatuses() []RequestStatus {
	return []RequestStatus{
		RequestStatusPending,
		RequestStatusClarificationNeeded,
		RequestStatusInReview,
		RequestStatusApproved,
		RequestStatusRejected,
		RequestStatusWithdrawn,
	}
}

// IsValid checks if the status is a valid RequestStatus
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestStatusPending, RequestStatusClarificationNeeded, RequestStatusInReview,
		RequestStatusApproved, RequestStatusRejected, RequestStatusWithdrawn:
		return true
	}
	return false
}

// String returns the string representation of RequestStatus
func (s RequestStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is defined from s
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusApproved || s == RequestStatusRejected || s == RequestStatusWithdrawn
}

// CanEdit returns true if the requester may still change the request details
func (s RequestStatus) CanEdit() bool {
	return s == RequestStatusPending
}

// CanDecide returns true if an approver may approve or reject
func (s RequestStatus) CanDecide() bool {
	return s == RequestStatusPending || s == RequestStatusInReview
}

// CanRequestClarification returns true if an approver may ask a question
func (s RequestStatus) CanRequestClarification() bool {
	return s == RequestStatusPending || s == RequestStatusInReview
}

// CanReply returns true if the requester may answer a clarification
func (s RequestStatus) CanReply() bool {
	return s == RequestStatusClarificationNeeded
}

// CanWithdraw returns true if the requester may withdraw the request
func (s RequestStatus) CanWithdraw() bool {
	return s == RequestStatusPending || s == RequestStatusClarificationNeeded || s == RequestStatusInReview
}

// CanTransitionTo checks if the status can transition to the target status
func (s RequestStatus) CanTransitionTo(target RequestStatus) bool {
	switch target {
	case RequestStatusApproved, RequestStatusRejected:
		return s.CanDecide()
	case RequestStatusClarificationNeeded:
		return s.CanRequestClarification()
	case RequestStatusInReview:
		return s.CanReply()
	case RequestStatusWithdrawn:
		return s.CanWithdraw()
	}
	return false
}
