// Package bce implements the bce-auth-v1 request signature used by the Baidu
// AI platform: byte-wise percent-encoding of URI paths and query values, the
// canonical request string, and the two-stage HMAC-SHA256 derivation.
//
//	headers, err := bce.Sign(bce.Credentials{AccessKeyID: ak, SecretKey: sk},
//		http.MethodPost, "https://aip.baidubce.com/rest/2.0/face/v2/identify",
//		map[string]string{"access_token": token}, time.Now())
package bce
