package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/s0up4200/gplay/playstore"
	"github.com/s0up4200/gplay/protocol"
)

func printDocuments(docs []*protocol.Document) {
	if len(docs) == 0 {
		fmt.Println("No apps found matching the criteria.")
		return
	}

	fmt.Printf("\nFound %d apps:\n", len(docs))
	fmt.Println(strings.Repeat("-", 80))

	for _, doc := range docs {
		fmt.Printf("• %s (%s)", doc.Title, doc.Docid)
		if app := doc.AppDetails(); app != nil && app.VersionString != "" {
			fmt.Printf(" v%s", app.VersionString)
		}
		if !doc.IsFree() {
			fmt.Printf(" [%s]", doc.Price())
		}
		fmt.Println()
	}
}

func printDocument(doc *protocol.Document) {
	fmt.Printf("%s (%s)\n", doc.Title, doc.Docid)
	fmt.Println(strings.Repeat("━", 50))
	fmt.Printf("Creator: %s\n", doc.Creator)

	if doc.IsFree() {
		fmt.Println("Price: free")
	} else {
		fmt.Printf("Price: %s\n", doc.Price())
	}

	if app := doc.AppDetails(); app != nil {
		fmt.Printf("Version: %s (%d)\n", app.VersionString, app.VersionCode)
		if app.InstallationSize > 0 {
			fmt.Printf("Size: %.1f MB\n", float64(app.InstallationSize)/(1024*1024))
		}
		if app.NumDownloads != "" {
			fmt.Printf("Downloads: %s\n", app.NumDownloads)
		}
		if app.UploadDate != "" {
			fmt.Printf("Updated: %s\n", app.UploadDate)
		}
		if len(app.AppCategory) > 0 {
			fmt.Printf("Categories: %s\n", strings.Join(app.AppCategory, ", "))
		}
		fmt.Printf("Permissions: %d\n", len(app.Permission))
	}

	if r := doc.AggregateRating; r != nil && r.RatingsCount > 0 {
		fmt.Printf("Rating: %.1f (%d ratings)\n", r.StarRating, r.RatingsCount)
	}

	if a := doc.Availability; a != nil && a.Restriction != 1 {
		if r, ok := playstore.RestrictionMessage(a.Restriction); ok {
			fmt.Printf("Availability: %s\n", r.Message)
		}
	}
}

func printReviews(reviews []*protocol.Review) {
	if len(reviews) == 0 {
		fmt.Println("No reviews found.")
		return
	}

	for _, r := range reviews {
		fmt.Printf("%s %s", strings.Repeat("★", int(r.StarRating)), r.AuthorName)
		if r.TimestampMsec > 0 {
			fmt.Printf(" (%s)", time.UnixMilli(r.TimestampMsec).Format(time.DateOnly))
		}
		fmt.Println()
		if r.Title != "" {
			fmt.Println(r.Title)
		}
		if r.Comment != "" {
			fmt.Println(r.Comment)
		}
		fmt.Println(strings.Repeat("-", 80))
	}
}

func printDelivery(data *playstore.DeliveryData) {
	fmt.Printf("URL: %s\n", data.DownloadURL)
	fmt.Printf("Size: %d bytes\n", data.DownloadSize)

	if data.Signature != "" {
		if sha1, err := playstore.SignatureToSHA1(data.Signature); err == nil {
			fmt.Printf("SHA1: %s\n", sha1)
		}
	}

	for _, c := range data.AuthCookies {
		fmt.Printf("Cookie: %s=%s\n", c.Name, c.Value)
	}

	for i, f := range data.AdditionalFiles {
		fmt.Printf("Additional file %d: type=%d version=%d size=%d\n", i, f.FileType, f.VersionCode, f.Size)
	}
}
