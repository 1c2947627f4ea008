// Package directory provides access to the provisioned-account table.
package directory

// AccountRecord is one provisioned account as stored in DynamoDB.
//
// AccountName holds the base name without the trailing sequence; Enum holds
// the zero-padded sequence as a string. Together they form the externally
// visible account name "{AccountName}-{Enum}".
type AccountRecord struct {
	AccountEmail string            `dynamodbav:"AccountEmail" json:"AccountEmail"`
	AccountID    string            `dynamodbav:"AccountId" json:"AccountId,omitempty"`
	AccountName  string            `dynamodbav:"AccountName" json:"AccountName"`
	Enum         string            `dynamodbav:"Enum" json:"Enum"`
	AccountType  string            `dynamodbav:"AccountType" json:"AccountType"`
	OwnerAddress string            `dynamodbav:"OwnerAddress" json:"OwnerAddress"`
	Tags         map[string]string `dynamodbav:"Tags" json:"Tags,omitempty"`
	Status       string            `dynamodbav:"Status" json:"Status"`
	LastUpdated  string            `dynamodbav:"LastUpdated" json:"LastUpdated"`
}

// FullName returns the externally visible account name.
func (r *AccountRecord) FullName() string {
	return r.AccountName + "-" + r.Enum
}

// StatusNameAllocated marks a record whose name and email have been vended but
// whose account has not yet been created by later provisioning stages.
const StatusNameAllocated = "NAME-ALLOCATED"
