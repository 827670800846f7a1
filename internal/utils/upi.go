package utils

import "net/url"

// UPIPayString builds the upi://pay deeplink riders use to pay the driver.
// Only a reference string; rendering it as a QR image is the frontend's job.
func UPIPayString(upiID, payeeName string) string {
	if upiID == "" {
		return ""
	}
	q := url.Values{}
	q.Set("pa", upiID)
	if payeeName != "" {
		q.Set("pn", payeeName)
	}
	q.Set("cu", "INR")
	return "upi://pay?" + q.Encode()
}
