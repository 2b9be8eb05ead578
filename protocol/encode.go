package protocol

// Marshal encodes the bulk lookup body.
func (m *BulkDetailsRequest) Marshal() []byte {
	return m.appendTo(nil)
}

// Marshal encodes the envelope. Used by stub servers and fixtures.
func (m *ResponseWrapper) Marshal() []byte {
	return m.appendTo(nil)
}

func (m *BulkDetailsRequest) appendTo(b []byte) []byte {
	for _, id := range m.Docid {
		b = appendString(b, 1, id)
	}
	b = appendBool(b, 2, m.IncludeChildDocs)
	return appendBool(b, 3, m.IncludeDetails)
}

func (m *ResponseWrapper) appendTo(b []byte) []byte {
	if m.Payload != nil {
		b = appendMessage(b, 1, m.Payload)
	}
	if m.Commands != nil {
		b = appendMessage(b, 2, m.Commands)
	}
	for _, p := range m.PreFetch {
		b = appendMessage(b, 3, p)
	}
	return b
}

func (m *ServerCommands) appendTo(b []byte) []byte {
	b = appendBool(b, 1, m.ClearCache)
	b = appendString(b, 2, m.DisplayErrorMessage)
	return appendString(b, 3, m.LogErrorStacktrace)
}

func (m *PreFetch) appendTo(b []byte) []byte {
	b = appendString(b, 1, m.URL)
	b = appendBytes(b, 2, m.Response)
	b = appendString(b, 3, m.ETag)
	b = appendVarint(b, 4, uint64(m.TTL))
	return appendVarint(b, 5, uint64(m.SoftTTL))
}

func (m *Payload) appendTo(b []byte) []byte {
	if m.ListResponse != nil {
		b = appendMessage(b, 1, m.ListResponse)
	}
	if m.DetailsResponse != nil {
		b = appendMessage(b, 2, m.DetailsResponse)
	}
	if m.ReviewResponse != nil {
		b = appendMessage(b, 3, m.ReviewResponse)
	}
	if m.BuyResponse != nil {
		b = appendMessage(b, 4, m.BuyResponse)
	}
	if m.SearchResponse != nil {
		b = appendMessage(b, 5, m.SearchResponse)
	}
	if m.BulkDetailsResponse != nil {
		b = appendMessage(b, 19, m.BulkDetailsResponse)
	}
	if m.DeliveryResponse != nil {
		b = appendMessage(b, 21, m.DeliveryResponse)
	}
	return b
}

func (m *ListResponse) appendTo(b []byte) []byte {
	for _, d := range m.Doc {
		b = appendMessage(b, 2, d)
	}
	return b
}

func (m *DetailsResponse) appendTo(b []byte) []byte {
	if m.Doc != nil {
		b = appendMessage(b, 4, m.Doc)
	}
	return b
}

func (m *ReviewResponse) appendTo(b []byte) []byte {
	if m.GetResponse != nil {
		b = appendMessage(b, 1, m.GetResponse)
	}
	return appendString(b, 2, m.NextPageURL)
}

func (m *GetReviewsResponse) appendTo(b []byte) []byte {
	for _, r := range m.Review {
		b = appendMessage(b, 1, r)
	}
	return appendVarint(b, 2, uint64(m.MatchingCount))
}

func (m *Review) appendTo(b []byte) []byte {
	b = appendString(b, 1, m.AuthorName)
	b = appendString(b, 2, m.URL)
	b = appendString(b, 3, m.Source)
	b = appendString(b, 4, m.DocumentVersion)
	b = appendVarint(b, 5, uint64(m.TimestampMsec))
	b = appendVarint(b, 6, uint64(int64(m.StarRating)))
	b = appendString(b, 7, m.Title)
	b = appendString(b, 8, m.Comment)
	b = appendString(b, 9, m.CommentID)
	b = appendString(b, 19, m.DeviceName)
	b = appendString(b, 29, m.ReplyText)
	return appendVarint(b, 30, uint64(m.ReplyTimestampMsec))
}

func (m *SearchResponse) appendTo(b []byte) []byte {
	b = appendString(b, 1, m.OriginalQuery)
	b = appendString(b, 2, m.SuggestedQuery)
	for _, d := range m.Doc {
		b = appendMessage(b, 5, d)
	}
	return b
}

func (m *BulkDetailsResponse) appendTo(b []byte) []byte {
	for _, e := range m.Entry {
		b = appendMessage(b, 1, e)
	}
	return b
}

func (m *BulkDetailsEntry) appendTo(b []byte) []byte {
	if m.Doc != nil {
		b = appendMessage(b, 1, m.Doc)
	}
	return b
}

func (m *BuyResponse) appendTo(b []byte) []byte {
	if m.CheckoutInfo != nil {
		b = appendGroup(b, 2, m.CheckoutInfo)
	}
	if m.PurchaseStatusResponse != nil {
		b = appendMessage(b, 39, m.PurchaseStatusResponse)
	}
	return b
}

func (m *CheckoutInfo) appendTo(b []byte) []byte {
	if m.Item != nil {
		b = appendMessage(b, 3, m.Item)
	}
	return b
}

func (m *LineItem) appendTo(b []byte) []byte {
	b = appendString(b, 1, m.Name)
	b = appendString(b, 2, m.Description)
	if m.Amount != nil {
		b = appendMessage(b, 4, m.Amount)
	}
	return b
}

func (m *Money) appendTo(b []byte) []byte {
	b = appendVarint(b, 1, uint64(m.Micros))
	b = appendString(b, 2, m.CurrencyCode)
	return appendString(b, 3, m.FormattedAmount)
}

func (m *PurchaseStatusResponse) appendTo(b []byte) []byte {
	b = appendVarint(b, 1, uint64(int64(m.Status)))
	b = appendString(b, 2, m.StatusMsg)
	b = appendString(b, 3, m.StatusTitle)
	if m.AppDeliveryData != nil {
		b = appendMessage(b, 8, m.AppDeliveryData)
	}
	return b
}

func (m *DeliveryResponse) appendTo(b []byte) []byte {
	b = appendVarint(b, 1, uint64(int64(m.Status)))
	if m.AppDeliveryData != nil {
		b = appendMessage(b, 2, m.AppDeliveryData)
	}
	return b
}

func (m *AppDeliveryData) appendTo(b []byte) []byte {
	b = appendVarint(b, 1, uint64(m.DownloadSize))
	b = appendString(b, 2, m.Signature)
	b = appendString(b, 3, m.DownloadURL)
	for _, f := range m.AdditionalFile {
		b = appendMessage(b, 4, f)
	}
	for _, c := range m.DownloadAuthCookie {
		b = appendMessage(b, 5, c)
	}
	b = appendBool(b, 6, m.ForwardLocked)
	b = appendVarint(b, 7, uint64(m.RefundTimeout))
	b = appendString(b, 13, m.GzippedDownloadURL)
	return appendVarint(b, 14, uint64(m.GzippedDownloadSize))
}

func (m *AppFileMetadata) appendTo(b []byte) []byte {
	b = appendVarint(b, 1, uint64(int64(m.FileType)))
	b = appendVarint(b, 2, uint64(int64(m.VersionCode)))
	b = appendVarint(b, 3, uint64(m.Size))
	return appendString(b, 4, m.DownloadURL)
}

func (m *HTTPCookie) appendTo(b []byte) []byte {
	b = appendString(b, 1, m.Name)
	return appendString(b, 2, m.Value)
}

func (m *Document) appendTo(b []byte) []byte {
	b = appendString(b, 1, m.Docid)
	b = appendString(b, 2, m.BackendDocid)
	b = appendVarint(b, 3, uint64(int64(m.DocType)))
	b = appendVarint(b, 4, uint64(int64(m.BackendID)))
	b = appendString(b, 5, m.Title)
	b = appendString(b, 6, m.Creator)
	b = appendString(b, 7, m.DescriptionHTML)
	for _, o := range m.Offer {
		b = appendMessage(b, 8, o)
	}
	if m.Availability != nil {
		b = appendMessage(b, 9, m.Availability)
	}
	for _, c := range m.Child {
		b = appendMessage(b, 11, c)
	}
	if m.Details != nil {
		b = appendMessage(b, 13, m.Details)
	}
	if m.AggregateRating != nil {
		b = appendMessage(b, 14, m.AggregateRating)
	}
	b = appendString(b, 16, m.DetailsURL)
	b = appendString(b, 17, m.ShareURL)
	return appendString(b, 18, m.ReviewsURL)
}

func (m *Offer) appendTo(b []byte) []byte {
	b = appendVarint(b, 1, uint64(m.Micros))
	b = appendString(b, 2, m.CurrencyCode)
	b = appendString(b, 3, m.FormattedAmount)
	return appendVarint(b, 8, uint64(int64(m.OfferType)))
}

func (m *Availability) appendTo(b []byte) []byte {
	return appendVarint(b, 5, uint64(int64(m.Restriction)))
}

func (m *DocumentDetails) appendTo(b []byte) []byte {
	if m.AppDetails != nil {
		b = appendMessage(b, 1, m.AppDetails)
	}
	return b
}

func (m *AppDetails) appendTo(b []byte) []byte {
	b = appendString(b, 1, m.DeveloperName)
	b = appendVarint(b, 3, uint64(int64(m.VersionCode)))
	b = appendString(b, 4, m.VersionString)
	b = appendString(b, 5, m.Title)
	for _, c := range m.AppCategory {
		b = appendString(b, 7, c)
	}
	b = appendVarint(b, 8, uint64(int64(m.ContentRating)))
	b = appendVarint(b, 9, uint64(m.InstallationSize))
	for _, p := range m.Permission {
		b = appendString(b, 10, p)
	}
	b = appendString(b, 11, m.DeveloperEmail)
	b = appendString(b, 12, m.DeveloperWebsite)
	b = appendString(b, 13, m.NumDownloads)
	b = appendString(b, 14, m.PackageName)
	b = appendString(b, 15, m.RecentChangesHTML)
	return appendString(b, 16, m.UploadDate)
}

func (m *AggregateRating) appendTo(b []byte) []byte {
	b = appendVarint(b, 1, uint64(int64(m.Type)))
	b = appendFloat32(b, 2, m.StarRating)
	return appendVarint(b, 3, m.RatingsCount)
}
