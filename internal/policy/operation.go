package policy

// Operation names one administrative action.
type Operation string

const (
	AccountList   Operation = "account:list"
	AccountGet    Operation = "account:get"
	AccountCreate Operation = "account:create"
	AccountUpdate Operation = "account:update"
	AccountDelete Operation = "account:delete"
	AdminList     Operation = "admin:list"

	ProviderList      Operation = "provider:list"
	ProviderGet       Operation = "provider:get"
	ProviderCreate    Operation = "provider:create"
	ProviderUpdate    Operation = "provider:update"
	ProviderDelete    Operation = "provider:delete"
	ProviderApprove   Operation = "provider:approve"
	ProviderDisable   Operation = "provider:disable"
	ProviderReject    Operation = "provider:reject"
	ProviderSetStatus Operation = "provider:set_status"

	ServiceList      Operation = "service:list"
	ServiceGet       Operation = "service:get"
	ServiceCreate    Operation = "service:create"
	ServiceUpdate    Operation = "service:update"
	ServiceDelete    Operation = "service:delete"
	ServiceApprove   Operation = "service:approve"
	ServiceDisable   Operation = "service:disable"
	ServiceReject    Operation = "service:reject"
	ServiceSetStatus Operation = "service:set_status"

	CategoryList   Operation = "category:list"
	CategoryGet    Operation = "category:get"
	CategoryCreate Operation = "category:create"
	CategoryUpdate Operation = "category:update"
	CategoryDelete Operation = "category:delete"

	StatsRead Operation = "stats:read"
)

type resource int

const (
	resourceUnknown resource = iota
	resourceAccount
	resourceProvider
	resourceService
	resourceCategory
	resourceStats
)

type verb int

const (
	verbRead verb = iota
	verbCreate
	verbUpdate
	verbDelete
	verbApprove
	verbDisable
	verbReject
	verbSetStatus
	verbSuperRead
)

type opInfo struct {
	resource resource
	verb     verb
}

var operations = map[Operation]opInfo{
	AccountList:   {resourceAccount, verbRead},
	AccountGet:    {resourceAccount, verbRead},
	AccountCreate: {resourceAccount, verbCreate},
	AccountUpdate: {resourceAccount, verbUpdate},
	AccountDelete: {resourceAccount, verbDelete},
	AdminList:     {resourceAccount, verbSuperRead},

	ProviderList:      {resourceProvider, verbRead},
	ProviderGet:       {resourceProvider, verbRead},
	ProviderCreate:    {resourceProvider, verbCreate},
	ProviderUpdate:    {resourceProvider, verbUpdate},
	ProviderDelete:    {resourceProvider, verbDelete},
	ProviderApprove:   {resourceProvider, verbApprove},
	ProviderDisable:   {resourceProvider, verbDisable},
	ProviderReject:    {resourceProvider, verbReject},
	ProviderSetStatus: {resourceProvider, verbSetStatus},

	ServiceList:      {resourceService, verbRead},
	ServiceGet:       {resourceService, verbRead},
	ServiceCreate:    {resourceService, verbCreate},
	ServiceUpdate:    {resourceService, verbUpdate},
	ServiceDelete:    {resourceService, verbDelete},
	ServiceApprove:   {resourceService, verbApprove},
	ServiceDisable:   {resourceService, verbDisable},
	ServiceReject:    {resourceService, verbReject},
	ServiceSetStatus: {resourceService, verbSetStatus},

	CategoryList:   {resourceCategory, verbRead},
	CategoryGet:    {resourceCategory, verbRead},
	CategoryCreate: {resourceCategory, verbCreate},
	CategoryUpdate: {resourceCategory, verbUpdate},
	CategoryDelete: {resourceCategory, verbDelete},

	StatsRead: {resourceStats, verbRead},
}
