package protocol

// ResponseWrapper is the envelope around every FDFE response body.
type ResponseWrapper struct {
	Payload  *Payload
	Commands *ServerCommands
	PreFetch []*PreFetch
}

// ServerCommands carries out-of-band instructions from the server. On
// error responses DisplayErrorMessage holds the human readable reason.
type ServerCommands struct {
	ClearCache          bool
	DisplayErrorMessage string
	LogErrorStacktrace  string
}

// PreFetch is a server-pushed (url, response) pair meant to satisfy a
// request the client is expected to make next. Response is itself an
// encoded ResponseWrapper.
type PreFetch struct {
	URL      string
	Response []byte
	ETag     string
	TTL      int64
	SoftTTL  int64
}

// PayloadKind names the populated payload variant.
type PayloadKind string

const (
	PayloadNone        PayloadKind = ""
	PayloadList        PayloadKind = "list"
	PayloadDetails     PayloadKind = "details"
	PayloadReview      PayloadKind = "review"
	PayloadBuy         PayloadKind = "buy"
	PayloadSearch      PayloadKind = "search"
	PayloadBulkDetails PayloadKind = "bulkDetails"
	PayloadDelivery    PayloadKind = "delivery"
)

// Payload holds one populated response variant.
type Payload struct {
	ListResponse        *ListResponse
	DetailsResponse     *DetailsResponse
	ReviewResponse      *ReviewResponse
	BuyResponse         *BuyResponse
	SearchResponse      *SearchResponse
	BulkDetailsResponse *BulkDetailsResponse
	DeliveryResponse    *DeliveryResponse
}

// Kind reports which variant is populated.
func (p *Payload) Kind() PayloadKind {
	switch {
	case p == nil:
		return PayloadNone
	case p.ListResponse != nil:
		return PayloadList
	case p.DetailsResponse != nil:
		return PayloadDetails
	case p.ReviewResponse != nil:
		return PayloadReview
	case p.BuyResponse != nil:
		return PayloadBuy
	case p.SearchResponse != nil:
		return PayloadSearch
	case p.BulkDetailsResponse != nil:
		return PayloadBulkDetails
	case p.DeliveryResponse != nil:
		return PayloadDelivery
	}
	return PayloadNone
}

// ListResponse is returned by the related-items endpoint.
type ListResponse struct {
	Doc []*Document
}

// DetailsResponse is returned by the details endpoint.
type DetailsResponse struct {
	Doc *Document
}

// ReviewResponse is returned by the reviews endpoint.
type ReviewResponse struct {
	GetResponse *GetReviewsResponse
	NextPageURL string
}

// GetReviewsResponse is one page of reviews.
type GetReviewsResponse struct {
	Review        []*Review
	MatchingCount int64
}

// Review is a single user review.
type Review struct {
	AuthorName         string
	URL                string
	Source             string
	DocumentVersion    string
	TimestampMsec      int64
	StarRating         int32
	Title              string
	Comment            string
	CommentID          string
	DeviceName         string
	ReplyText          string
	ReplyTimestampMsec int64
}

// SearchResponse is returned by the search endpoint.
type SearchResponse struct {
	OriginalQuery  string
	SuggestedQuery string
	Doc            []*Document
}

// BulkDetailsResponse is returned by the bulk lookup endpoint.
type BulkDetailsResponse struct {
	Entry []*BulkDetailsEntry
}

// BulkDetailsEntry wraps one looked-up document. Doc is nil for
// unknown packages.
type BulkDetailsEntry struct {
	Doc *Document
}

// BuyResponse is returned by the purchase endpoint. A missing
// PurchaseStatusResponse means the item requires payment, in which case
// CheckoutInfo carries the price.
type BuyResponse struct {
	CheckoutInfo           *CheckoutInfo
	PurchaseStatusResponse *PurchaseStatusResponse
}

// CheckoutInfo is encoded as a group inside BuyResponse.
type CheckoutInfo struct {
	Item *LineItem
}

// LineItem is one priced checkout line.
type LineItem struct {
	Name        string
	Description string
	Amount      *Money
}

// Money is a price with its display form.
type Money struct {
	Micros          int64
	CurrencyCode    string
	FormattedAmount string
}

// PurchaseStatusResponse is present when the purchase went through.
type PurchaseStatusResponse struct {
	Status          int32
	StatusMsg       string
	StatusTitle     string
	AppDeliveryData *AppDeliveryData
}

// DeliveryResponse is returned by the delivery endpoint.
type DeliveryResponse struct {
	Status          int32
	AppDeliveryData *AppDeliveryData
}

// AppDeliveryData describes how to fetch an artifact.
type AppDeliveryData struct {
	DownloadSize        int64
	Signature           string
	DownloadURL         string
	AdditionalFile      []*AppFileMetadata
	DownloadAuthCookie  []*HTTPCookie
	ForwardLocked       bool
	RefundTimeout       int64
	GzippedDownloadURL  string
	GzippedDownloadSize int64
}

// AppFileMetadata describes an additional (expansion) file.
type AppFileMetadata struct {
	FileType    int32
	VersionCode int32
	Size        int64
	DownloadURL string
}

// HTTPCookie is a name/value pair the download host expects.
type HTTPCookie struct {
	Name  string
	Value string
}

// Document is a store item (DocV2).
type Document struct {
	Docid           string
	BackendDocid    string
	DocType         int32
	BackendID       int32
	Title           string
	Creator         string
	DescriptionHTML string
	Offer           []*Offer
	Availability    *Availability
	Child           []*Document
	Details         *DocumentDetails
	AggregateRating *AggregateRating
	DetailsURL      string
	ShareURL        string
	ReviewsURL      string
}

// AppDetails returns the app-specific details, or nil.
func (d *Document) AppDetails() *AppDetails {
	if d == nil || d.Details == nil {
		return nil
	}
	return d.Details.AppDetails
}

// VersionCode returns the current version code, or 0 if unknown.
func (d *Document) VersionCode() int32 {
	if app := d.AppDetails(); app != nil {
		return app.VersionCode
	}
	return 0
}

// IsFree reports whether the first offer costs nothing. Documents
// without offers are treated as free.
func (d *Document) IsFree() bool {
	if d == nil || len(d.Offer) == 0 {
		return true
	}
	return d.Offer[0].Micros == 0
}

// Price returns the formatted price of the first offer.
func (d *Document) Price() string {
	if d == nil || len(d.Offer) == 0 {
		return ""
	}
	return d.Offer[0].FormattedAmount
}

// Offer is a priced way of acquiring a document.
type Offer struct {
	Micros          int64
	CurrencyCode    string
	FormattedAmount string
	OfferType       int32
}

// Availability carries the restriction code for unavailable items.
type Availability struct {
	Restriction int32
}

// DocumentDetails wraps the per-backend details.
type DocumentDetails struct {
	AppDetails *AppDetails
}

// AppDetails holds app metadata.
type AppDetails struct {
	DeveloperName     string
	VersionCode       int32
	VersionString     string
	Title             string
	AppCategory       []string
	ContentRating     int32
	InstallationSize  int64
	Permission        []string
	DeveloperEmail    string
	DeveloperWebsite  string
	NumDownloads      string
	PackageName       string
	RecentChangesHTML string
	UploadDate        string
}

// AggregateRating summarizes user ratings.
type AggregateRating struct {
	Type         int32
	StarRating   float32
	RatingsCount uint64
}

// BulkDetailsRequest is the body of a bulk lookup.
type BulkDetailsRequest struct {
	Docid            []string
	IncludeChildDocs bool
	IncludeDetails   bool
}
