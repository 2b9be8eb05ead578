package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestDecodeResponse_Details(t *testing.T) {
	in := &ResponseWrapper{
		Payload: &Payload{
			DetailsResponse: &DetailsResponse{
				Doc: &Document{
					Docid:   "com.viber.voip",
					Title:   "Viber",
					Creator: "Viber Media",
					Offer:   []*Offer{{Micros: 0, CurrencyCode: "USD", OfferType: 1}},
					Details: &DocumentDetails{AppDetails: &AppDetails{
						VersionCode:  120263,
						PackageName:  "com.viber.voip",
						Permission:   []string{"android.permission.INTERNET", "android.permission.CAMERA"},
						NumDownloads: "1,000,000,000+",
					}},
					AggregateRating: &AggregateRating{StarRating: 4.5, RatingsCount: 12345},
					Availability:    &Availability{Restriction: 9},
				},
			},
		},
	}

	out, err := DecodeResponse(in.Marshal())
	require.NoError(t, err)
	require.Equal(t, PayloadDetails, out.Payload.Kind())

	doc := out.Payload.DetailsResponse.Doc
	assert.Equal(t, "com.viber.voip", doc.Docid)
	assert.Equal(t, "Viber Media", doc.Creator)
	assert.Equal(t, int32(120263), doc.VersionCode())
	assert.Len(t, doc.AppDetails().Permission, 2)
	assert.InDelta(t, 4.5, doc.AggregateRating.StarRating, 0.0001)
	assert.Equal(t, uint64(12345), doc.AggregateRating.RatingsCount)
	assert.Equal(t, int32(9), doc.Availability.Restriction)
	assert.True(t, doc.IsFree())
	assert.Nil(t, out.Commands)
	assert.Empty(t, out.PreFetch)
}

func TestDecodeResponse_BuyResponseCheckoutGroup(t *testing.T) {
	in := &ResponseWrapper{
		Payload: &Payload{
			BuyResponse: &BuyResponse{
				CheckoutInfo: &CheckoutInfo{
					Item: &LineItem{
						Name:   "Minecraft",
						Amount: &Money{Micros: 6990000, CurrencyCode: "USD", FormattedAmount: "$6.99"},
					},
				},
			},
		},
	}

	out, err := DecodeResponse(in.Marshal())
	require.NoError(t, err)

	buy := out.Payload.BuyResponse
	require.NotNil(t, buy)
	assert.Nil(t, buy.PurchaseStatusResponse)
	require.NotNil(t, buy.CheckoutInfo)
	assert.Equal(t, "$6.99", buy.CheckoutInfo.Item.Amount.FormattedAmount)
}

func TestDecodeResponse_PrefetchAndCommands(t *testing.T) {
	inner := &ResponseWrapper{Payload: &Payload{DetailsResponse: &DetailsResponse{Doc: &Document{Docid: "a.b"}}}}
	in := &ResponseWrapper{
		Commands: &ServerCommands{DisplayErrorMessage: "Item not found"},
		PreFetch: []*PreFetch{
			{URL: "details?doc=a.b", Response: inner.Marshal(), TTL: 60000},
			{URL: "details?doc=c.d"},
		},
	}

	out, err := DecodeResponse(in.Marshal())
	require.NoError(t, err)
	assert.Equal(t, "Item not found", out.Commands.DisplayErrorMessage)
	require.Len(t, out.PreFetch, 2)
	assert.Equal(t, "details?doc=a.b", out.PreFetch[0].URL)
	assert.Equal(t, int64(60000), out.PreFetch[0].TTL)

	nested, err := DecodeResponse(out.PreFetch[0].Response)
	require.NoError(t, err)
	assert.Equal(t, "a.b", nested.Payload.DetailsResponse.Doc.Docid)
}

func TestDecodeResponse_SkipsUnknownFields(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 99, protowire.VarintType)
	b = protowire.AppendVarint(b, 7)
	b = protowire.AppendTag(b, 98, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, 1)
	b = append(b, (&ResponseWrapper{Commands: &ServerCommands{DisplayErrorMessage: "ok"}}).Marshal()...)

	out, err := DecodeResponse(b)
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Commands.DisplayErrorMessage)
}

func TestDecodeResponse_Malformed(t *testing.T) {
	valid := (&ResponseWrapper{Commands: &ServerCommands{DisplayErrorMessage: "hello"}}).Marshal()

	wrongType := protowire.AppendTag(nil, 1, protowire.VarintType)
	wrongType = protowire.AppendVarint(wrongType, 3)

	tests := []struct {
		name string
		buf  []byte
	}{
		{name: "truncated", buf: valid[:len(valid)-2]},
		{name: "bad tag", buf: []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
		{name: "wrong wire type for message", buf: wrongType},
		{name: "stray end group", buf: protowire.AppendTag(nil, 4, protowire.EndGroupType)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeResponse(tt.buf)
			require.Error(t, err)
			var decErr *DecodeError
			assert.True(t, errors.As(err, &decErr))
		})
	}
}

func TestBulkDetailsRequest_Marshal(t *testing.T) {
	req := &BulkDetailsRequest{
		Docid:            []string{"com.viber.voip", "com.whatsapp"},
		IncludeChildDocs: true,
		IncludeDetails:   true,
	}

	out, err := DecodeBulkDetailsRequest(req.Marshal())
	require.NoError(t, err)
	assert.Equal(t, req, out)
}

func TestPayloadKind(t *testing.T) {
	var nilPayload *Payload
	assert.Equal(t, PayloadNone, nilPayload.Kind())
	assert.Equal(t, PayloadNone, (&Payload{}).Kind())
	assert.Equal(t, PayloadDelivery, (&Payload{DeliveryResponse: &DeliveryResponse{}}).Kind())
	assert.Equal(t, PayloadBulkDetails, (&Payload{BulkDetailsResponse: &BulkDetailsResponse{}}).Kind())
}

func TestDocument_Price(t *testing.T) {
	doc := &Document{Offer: []*Offer{{Micros: 990000, FormattedAmount: "$0.99"}}}
	assert.False(t, doc.IsFree())
	assert.Equal(t, "$0.99", doc.Price())

	var none *Document
	assert.True(t, none.IsFree())
	assert.Equal(t, "", none.Price())
	assert.Nil(t, none.AppDetails())
}
