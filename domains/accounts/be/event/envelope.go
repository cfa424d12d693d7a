package event

// Envelope is the EventBridge-shaped wrapper every upstream lifecycle event
// arrives in. Detail carries the source-specific payload; only the fields the
// normalizer reads are modeled.
type Envelope struct {
	Source     string `json:"source"`
	DetailType string `json:"detail-type"`
	Detail     Detail `json:"detail"`
}

// Detail is the union of per-source payload fields. CloudTrail-backed events
// (provisioning, account factory) populate EventName and the request/response
// blocks; the stack instance status event populates StackID and StatusDetails.
type Detail struct {
	EventName           string               `json:"eventName,omitempty"`
	RequestParameters   *RequestParameters   `json:"requestParameters,omitempty"`
	ResponseElements    *ResponseElements    `json:"responseElements,omitempty"`
	ServiceEventDetails *ServiceEventDetails `json:"serviceEventDetails,omitempty"`
	StackID             string               `json:"stack-id,omitempty"`
	StatusDetails       *StatusDetails       `json:"status-details,omitempty"`
}

// KeyValue is a tag or provisioning parameter entry.
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type RequestParameters struct {
	Tags                   []KeyValue `json:"tags"`
	ProvisioningParameters []KeyValue `json:"provisioningParameters"`
}

type ResponseElements struct {
	RecordDetail RecordDetail `json:"recordDetail"`
}

type RecordDetail struct {
	Status string `json:"status"`
}

type ServiceEventDetails struct {
	CreateManagedAccountStatus CreateManagedAccountStatus `json:"createManagedAccountStatus"`
}

type CreateManagedAccountStatus struct {
	State   string         `json:"state"`
	Account ManagedAccount `json:"account"`
}

type ManagedAccount struct {
	AccountID   string `json:"accountId"`
	AccountName string `json:"accountName"`
}

// StatusDetails reports stack instance deployment status; DetailedStatus is
// preferred when present.
type StatusDetails struct {
	DetailedStatus string `json:"detailed-status"`
	Status         string `json:"status"`
}

func lookup(entries []KeyValue, key string) (string, bool) {
	for _, e := range entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}
