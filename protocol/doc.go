// Package protocol implements the binary envelope codec spoken by the
// store's FDFE endpoints.
//
// Messages are protobuf encoded. Only the subset of the schema the
// client consumes is modelled here, and the codec is written directly
// against google.golang.org/protobuf/encoding/protowire so the package
// does not depend on a protoc/codegen toolchain. Unknown fields are
// skipped on decode.
//
// # Usage
//
//	env, err := protocol.DecodeResponse(body)
//	if err != nil {
//		return err
//	}
//	if env.Payload != nil && env.Payload.DetailsResponse != nil {
//		doc := env.Payload.DetailsResponse.Doc
//		...
//	}
//
// Every inbound body is decoded into a ResponseWrapper. Outbound bodies
// are only needed for bulk lookups (BulkDetailsRequest.Marshal). The
// Marshal methods on the response types exist so stub servers and
// fixtures can produce wire-identical envelopes.
package protocol
