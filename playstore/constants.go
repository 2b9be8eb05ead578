package playstore

import "strings"

// Wire constants expected by the store backend.
const (
	DefaultBaseURL  = "https://android.clients.google.com/fdfe"
	DefaultLoginURL = "https://android.clients.google.com/auth"
	DefaultHost     = "android.clients.google.com"

	DefaultCountry    = "us"
	DefaultLanguage   = "en_US"
	DefaultSDKVersion = "16"

	DefaultUserAgent = "Android-Finsky/4.3.11 " +
		"(api=3,versionCode=80230011,sdk=16,device=toro,hardware=tuna,product=mysid)"
	DefaultDownloadUserAgent = "AndroidDownloadManager/4.2.2 " +
		"(Linux; U; Android 4.2.2; Galaxy Nexus Build/JDQ39)"

	service                   = "androidmarket"
	accountTypeHostedOrGoogle = "HOSTED_OR_GOOGLE"
	androidVending            = "com.android.vending"
	clientID                  = "am-android-google"

	smallestScreenWidthDP = "320"
	filterLevel           = "3"

	contentTypeForm     = "application/x-www-form-urlencoded; charset=UTF-8"
	contentTypeProtobuf = "application/x-protobuf"
	contentTypeLogin    = "text/plain; charset=utf-8"

	// MaxBulkPackages bounds a single bulk lookup.
	MaxBulkPackages = 150

	maxSearchResults = 100
	maxReviewResults = 20
	defaultResults   = 20
)

var (
	enabledExperiments = strings.Join([]string{
		"cl:billing.select_add_instrument_by_default",
	}, ",")

	unsupportedExperiments = strings.Join([]string{
		"nocache:billing.use_charging_poller",
		"market_emails",
		"buyer_currency",
		"prod_baseline",
		"checkin.set_asset_paid_app_field",
		"shekel_test",
		"content_ratings",
		"buyer_currency_in_app",
		"nocache:encrypted_apk",
		"recent_changes",
	}, ",")
)
