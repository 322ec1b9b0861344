// orderctl drives the order funnel from a terminal: it walks the same
// form state machine the landing page uses and posts the result to a
// running proxy. Handy for smoke-testing a deployment end to end.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/kalijeogo/orderfunnel/internal/form"
	"github.com/kalijeogo/orderfunnel/internal/order"
	"github.com/kalijeogo/orderfunnel/internal/refdata"
)

func main() {
	var (
		proxyURL = flag.String("url", "http://localhost:8080/api/submit-order", "proxy submission endpoint")
		watch    = flag.String("watch", "", "watch id, e.g. w3")
		delivery = flag.String("delivery", "home", "delivery option: home or office")
		name     = flag.String("name", "", "customer full name")
		phone    = flag.String("phone", "", "customer phone number")
		wilayaID = flag.Int("wilaya", 0, "wilaya id")
		baladiya = flag.String("baladiya", "", "baladiya name")
		notes    = flag.String("notes", "", "optional order notes")
		list     = flag.Bool("list", false, "list wilayas (and baladiyat of -wilaya) and exit")
		dryRun   = flag.Bool("dry-run", false, "validate and print the payload without sending")
	)
	flag.Parse()

	if *list {
		listRefdata(*wilayaID)
		return
	}

	f := form.New(nil)
	f.SelectWatch(*watch)
	f.SelectDelivery(order.DeliveryOption(*delivery))
	f.FullName = *name
	f.Phone = *phone
	f.SetWilaya(*wilayaID)
	f.SetBaladiya(*baladiya)
	f.Notes = *notes

	if !f.Validate() {
		fmt.Fprintln(os.Stderr, "submission is incomplete:")
		for field, msg := range f.Errors {
			fmt.Fprintf(os.Stderr, "  %-10s %s\n", field, msg)
		}
		os.Exit(1)
	}

	sub := f.BuildSubmission()
	payload, err := json.MarshalIndent(sub, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode payload: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("total: %s (%s, %s)\n", order.FormatTotal(sub.Total),
		order.WatchLabel(sub.SelectedWatchID), order.DeliveryLabel(sub.DeliveryOption))

	if *dryRun {
		fmt.Println(string(payload))
		return
	}

	resp, err := submit(*proxyURL, payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "submit: %v\n", err)
		os.Exit(1)
	}

	if !resp.Success {
		fmt.Fprintf(os.Stderr, "rejected: %s\n", resp.Error)
		os.Exit(1)
	}
	f.MarkSubmitted()

	switch {
	case resp.Duplicate:
		fmt.Printf("duplicate of row %d (%s)\n", resp.Row, resp.Message)
	case resp.Row > 0:
		fmt.Printf("saved as row %d (%s)\n", resp.Row, resp.Message)
	default:
		// acknowledged before the backend confirmed; the token makes a
		// later retry safe
		fmt.Printf("acknowledged, token %s (%s)\n", resp.ClientRequestID, resp.Message)
	}
}

func submit(url string, payload []byte) (order.SubmitResponse, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	httpResp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return order.SubmitResponse{}, err
	}
	defer httpResp.Body.Close()

	var resp order.SubmitResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return order.SubmitResponse{}, fmt.Errorf("decoding response: %w", err)
	}
	return resp, nil
}

func listRefdata(wilayaID int) {
	if wilayaID != 0 {
		if w, ok := refdata.WilayaByID(wilayaID); ok {
			fmt.Printf("%d %s\n", w.ID, w.NameAr)
			for _, b := range refdata.BaladiyatOf(wilayaID) {
				fmt.Printf("  %s\n", b)
			}
			return
		}
		fmt.Fprintf(os.Stderr, "unknown wilaya id %d\n", wilayaID)
		os.Exit(1)
	}
	for _, w := range refdata.Wilayas() {
		fmt.Printf("%2d %s\n", w.ID, w.NameAr)
	}
}
