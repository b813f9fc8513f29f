package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// DescriptorSize is the fixed dimension of a facial descriptor.
const DescriptorSize = 128
