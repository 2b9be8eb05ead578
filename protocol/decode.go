package protocol

// DecodeResponse decodes an inbound body into a ResponseWrapper. Any
// malformed buffer yields a *DecodeError.
func DecodeResponse(b []byte) (*ResponseWrapper, error) {
	m := new(ResponseWrapper)
	if err := m.unmarshal(b); err != nil {
		return nil, err
	}
	return m, nil
}

// DecodeBulkDetailsRequest decodes a bulk lookup body.
func DecodeBulkDetailsRequest(b []byte) (*BulkDetailsRequest, error) {
	m := new(BulkDetailsRequest)
	if err := m.unmarshal(b); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *ResponseWrapper) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.Payload = new(Payload)
			return f.message(m.Payload)
		case 2:
			m.Commands = new(ServerCommands)
			return f.message(m.Commands)
		case 3:
			p := new(PreFetch)
			if err := f.message(p); err != nil {
				return err
			}
			m.PreFetch = append(m.PreFetch, p)
		}
		return nil
	})
}

func (m *ServerCommands) unmarshal(b []byte) error {
	return walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.ClearCache, err = f.bool()
		case 2:
			m.DisplayErrorMessage, err = f.str()
		case 3:
			m.LogErrorStacktrace, err = f.str()
		}
		return err
	})
}

func (m *PreFetch) unmarshal(b []byte) error {
	return walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.URL, err = f.str()
		case 2:
			m.Response, err = f.bytes()
		case 3:
			m.ETag, err = f.str()
		case 4:
			m.TTL, err = f.int64()
		case 5:
			m.SoftTTL, err = f.int64()
		}
		return err
	})
}

func (m *Payload) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.ListResponse = new(ListResponse)
			return f.message(m.ListResponse)
		case 2:
			m.DetailsResponse = new(DetailsResponse)
			return f.message(m.DetailsResponse)
		case 3:
			m.ReviewResponse = new(ReviewResponse)
			return f.message(m.ReviewResponse)
		case 4:
			m.BuyResponse = new(BuyResponse)
			return f.message(m.BuyResponse)
		case 5:
			m.SearchResponse = new(SearchResponse)
			return f.message(m.SearchResponse)
		case 19:
			m.BulkDetailsResponse = new(BulkDetailsResponse)
			return f.message(m.BulkDetailsResponse)
		case 21:
			m.DeliveryResponse = new(DeliveryResponse)
			return f.message(m.DeliveryResponse)
		}
		return nil
	})
}

func (m *ListResponse) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		if f.num == 2 {
			d := new(Document)
			if err := f.message(d); err != nil {
				return err
			}
			m.Doc = append(m.Doc, d)
		}
		return nil
	})
}

func (m *DetailsResponse) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		if f.num == 4 {
			m.Doc = new(Document)
			return f.message(m.Doc)
		}
		return nil
	})
}

func (m *ReviewResponse) unmarshal(b []byte) error {
	return walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.GetResponse = new(GetReviewsResponse)
			err = f.message(m.GetResponse)
		case 2:
			m.NextPageURL, err = f.str()
		}
		return err
	})
}

func (m *GetReviewsResponse) unmarshal(b []byte) error {
	return walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			r := new(Review)
			if err = f.message(r); err == nil {
				m.Review = append(m.Review, r)
			}
		case 2:
			m.MatchingCount, err = f.int64()
		}
		return err
	})
}

func (m *Review) unmarshal(b []byte) error {
	return walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.AuthorName, err = f.str()
		case 2:
			m.URL, err = f.str()
		case 3:
			m.Source, err = f.str()
		case 4:
			m.DocumentVersion, err = f.str()
		case 5:
			m.TimestampMsec, err = f.int64()
		case 6:
			m.StarRating, err = f.int32()
		case 7:
			m.Title, err = f.str()
		case 8:
			m.Comment, err = f.str()
		case 9:
			m.CommentID, err = f.str()
		case 19:
			m.DeviceName, err = f.str()
		case 29:
			m.ReplyText, err = f.str()
		case 30:
			m.ReplyTimestampMsec, err = f.int64()
		}
		return err
	})
}

func (m *SearchResponse) unmarshal(b []byte) error {
	return walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.OriginalQuery, err = f.str()
		case 2:
			m.SuggestedQuery, err = f.str()
		case 5:
			d := new(Document)
			if err = f.message(d); err == nil {
				m.Doc = append(m.Doc, d)
			}
		}
		return err
	})
}

func (m *BulkDetailsResponse) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		if f.num == 1 {
			e := new(BulkDetailsEntry)
			if err := f.message(e); err != nil {
				return err
			}
			m.Entry = append(m.Entry, e)
		}
		return nil
	})
}

func (m *BulkDetailsEntry) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		if f.num == 1 {
			m.Doc = new(Document)
			return f.message(m.Doc)
		}
		return nil
	})
}

func (m *BuyResponse) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 2:
			m.CheckoutInfo = new(CheckoutInfo)
			return f.group(m.CheckoutInfo)
		case 39:
			m.PurchaseStatusResponse = new(PurchaseStatusResponse)
			return f.message(m.PurchaseStatusResponse)
		}
		return nil
	})
}

func (m *CheckoutInfo) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		if f.num == 3 {
			m.Item = new(LineItem)
			return f.message(m.Item)
		}
		return nil
	})
}

func (m *LineItem) unmarshal(b []byte) error {
	return walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Name, err = f.str()
		case 2:
			m.Description, err = f.str()
		case 4:
			m.Amount = new(Money)
			err = f.message(m.Amount)
		}
		return err
	})
}

func (m *Money) unmarshal(b []byte) error {
	return walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Micros, err = f.int64()
		case 2:
			m.CurrencyCode, err = f.str()
		case 3:
			m.FormattedAmount, err = f.str()
		}
		return err
	})
}

func (m *PurchaseStatusResponse) unmarshal(b []byte) error {
	return walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Status, err = f.int32()
		case 2:
			m.StatusMsg, err = f.str()
		case 3:
			m.StatusTitle, err = f.str()
		case 8:
			m.AppDeliveryData = new(AppDeliveryData)
			err = f.message(m.AppDeliveryData)
		}
		return err
	})
}

func (m *DeliveryResponse) unmarshal(b []byte) error {
	return walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Status, err = f.int32()
		case 2:
			m.AppDeliveryData = new(AppDeliveryData)
			err = f.message(m.AppDeliveryData)
		}
		return err
	})
}

func (m *AppDeliveryData) unmarshal(b []byte) error {
	return walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.DownloadSize, err = f.int64()
		case 2:
			m.Signature, err = f.str()
		case 3:
			m.DownloadURL, err = f.str()
		case 4:
			af := new(AppFileMetadata)
			if err = f.message(af); err == nil {
				m.AdditionalFile = append(m.AdditionalFile, af)
			}
		case 5:
			c := new(HTTPCookie)
			if err = f.message(c); err == nil {
				m.DownloadAuthCookie = append(m.DownloadAuthCookie, c)
			}
		case 6:
			m.ForwardLocked, err = f.bool()
		case 7:
			m.RefundTimeout, err = f.int64()
		case 13:
			m.GzippedDownloadURL, err = f.str()
		case 14:
			m.GzippedDownloadSize, err = f.int64()
		}
		return err
	})
}

func (m *AppFileMetadata) unmarshal(b []byte) error {
	return walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.FileType, err = f.int32()
		case 2:
			m.VersionCode, err = f.int32()
		case 3:
			m.Size, err = f.int64()
		case 4:
			m.DownloadURL, err = f.str()
		}
		return err
	})
}

func (m *HTTPCookie) unmarshal(b []byte) error {
	return walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Name, err = f.str()
		case 2:
			m.Value, err = f.str()
		}
		return err
	})
}

func (m *Document) unmarshal(b []byte) error {
	return walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Docid, err = f.str()
		case 2:
			m.BackendDocid, err = f.str()
		case 3:
			m.DocType, err = f.int32()
		case 4:
			m.BackendID, err = f.int32()
		case 5:
			m.Title, err = f.str()
		case 6:
			m.Creator, err = f.str()
		case 7:
			m.DescriptionHTML, err = f.str()
		case 8:
			o := new(Offer)
			if err = f.message(o); err == nil {
				m.Offer = append(m.Offer, o)
			}
		case 9:
			m.Availability = new(Availability)
			err = f.message(m.Availability)
		case 11:
			c := new(Document)
			if err = f.message(c); err == nil {
				m.Child = append(m.Child, c)
			}
		case 13:
			m.Details = new(DocumentDetails)
			err = f.message(m.Details)
		case 14:
			m.AggregateRating = new(AggregateRating)
			err = f.message(m.AggregateRating)
		case 16:
			m.DetailsURL, err = f.str()
		case 17:
			m.ShareURL, err = f.str()
		case 18:
			m.ReviewsURL, err = f.str()
		}
		return err
	})
}

func (m *Offer) unmarshal(b []byte) error {
	return walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Micros, err = f.int64()
		case 2:
			m.CurrencyCode, err = f.str()
		case 3:
			m.FormattedAmount, err = f.str()
		case 8:
			m.OfferType, err = f.int32()
		}
		return err
	})
}

func (m *Availability) unmarshal(b []byte) error {
	return walk(b, func(f field) (err error) {
		if f.num == 5 {
			m.Restriction, err = f.int32()
		}
		return err
	})
}

func (m *DocumentDetails) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		if f.num == 1 {
			m.AppDetails = new(AppDetails)
			return f.message(m.AppDetails)
		}
		return nil
	})
}

func (m *AppDetails) unmarshal(b []byte) error {
	return walk(b, func(f field) (err error) {
		var s string
		switch f.num {
		case 1:
			m.DeveloperName, err = f.str()
		case 3:
			m.VersionCode, err = f.int32()
		case 4:
			m.VersionString, err = f.str()
		case 5:
			m.Title, err = f.str()
		case 7:
			if s, err = f.str(); err == nil {
				m.AppCategory = append(m.AppCategory, s)
			}
		case 8:
			m.ContentRating, err = f.int32()
		case 9:
			m.InstallationSize, err = f.int64()
		case 10:
			if s, err = f.str(); err == nil {
				m.Permission = append(m.Permission, s)
			}
		case 11:
			m.DeveloperEmail, err = f.str()
		case 12:
			m.DeveloperWebsite, err = f.str()
		case 13:
			m.NumDownloads, err = f.str()
		case 14:
			m.PackageName, err = f.str()
		case 15:
			m.RecentChangesHTML, err = f.str()
		case 16:
			m.UploadDate, err = f.str()
		}
		return err
	})
}

func (m *AggregateRating) unmarshal(b []byte) error {
	return walk(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Type, err = f.int32()
		case 2:
			m.StarRating, err = f.float32()
		case 3:
			m.RatingsCount, err = f.varint()
		}
		return err
	})
}

func (m *BulkDetailsRequest) unmarshal(b []byte) error {
	return walk(b, func(f field) (err error) {
		var s string
		switch f.num {
		case 1:
			if s, err = f.str(); err == nil {
				m.Docid = append(m.Docid, s)
			}
		case 2:
			m.IncludeChildDocs, err = f.bool()
		case 3:
			m.IncludeDetails, err = f.bool()
		}
		return err
	})
}
