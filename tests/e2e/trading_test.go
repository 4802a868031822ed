package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"
)

// Config for E2E tests - assumes services are running locally
const (
	MarketServiceURL = "http://localhost:8084"
	TraceServiceURL  = "http://localhost:8085"
)

func TestAuctionFlow(t *testing.T) {
	// 1. Create a listing for a commodity already registered on-chain
	commodityID := fmt.Sprintf("com-%d", time.Now().Unix())
	listingID := createListing(t, commodityID, 100)
	if listingID == "" {
		t.Skip("market service unavailable")
	}

	// 2. Two members bid, one above and one below the reserve
	makeOffer(t, listingID, "member-bhavna", 150)
	makeOffer(t, listingID, "member-chetan", 80)

	// 3. Close bidding (requires an operator token; without one the service
	// must refuse)
	resp, err := http.Post(MarketServiceURL+"/listings/"+listingID+"/close", "application/json", nil)
	if err != nil {
		t.Fatalf("Failed to call close: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Logf("Expected 401 without token, got: %d", resp.StatusCode)
	}
}

func TestRelayFlow(t *testing.T) {
	commodityID := fmt.Sprintf("com-%d", time.Now().Unix())

	// Walk the full chain: member -> local mandi -> destination mandi -> wholesaler
	relay(t, "local-mandi", "member-ramesh", "mandi-karnal", commodityID, 30)
	relay(t, "destination-mandi", "mandi-karnal", "mandi-azadpur", commodityID, 30)
	relay(t, "wholesaler", "mandi-azadpur", "wholesaler-gupta", commodityID, 30)

	// The trace should show one row per hop
	resp, err := http.Get(TraceServiceURL + "/commodities/" + commodityID + "/trace")
	if err != nil {
		t.Logf("Failed to fetch trace: %v", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Logf("Trace fetch failed with status: %d", resp.StatusCode)
	}
}

func createListing(t *testing.T, commodityID string, reservePrice float64) string {
	payload := map[string]interface{}{
		"commodity_id":  commodityID,
		"seller_id":     "member-ramesh",
		"description":   "wheat",
		"reserve_price": reservePrice,
	}
	body, _ := json.Marshal(payload)
	resp, err := http.Post(MarketServiceURL+"/listings", "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Logf("Failed to create listing: %v", err)
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Logf("Create listing failed with status: %d", resp.StatusCode)
		return ""
	}

	var created struct {
		ListingID string `json:"listing_id"`
	}
	json.NewDecoder(resp.Body).Decode(&created)
	return created.ListingID
}

func makeOffer(t *testing.T, listingID, memberID string, bidPrice float64) {
	payload := map[string]interface{}{
		"member_id": memberID,
		"bid_price": bidPrice,
	}
	body, _ := json.Marshal(payload)
	resp, err := http.Post(MarketServiceURL+"/listings/"+listingID+"/offers", "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Logf("Failed to make offer: %v", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Logf("Make offer failed with status: %d", resp.StatusCode)
	}
}

func relay(t *testing.T, hop, sourceID, destinationID, commodityID string, quantity int64) {
	payload := map[string]interface{}{
		"source_id":      sourceID,
		"destination_id": destinationID,
		"commodity_id":   commodityID,
		"quantity":       quantity,
	}
	body, _ := json.Marshal(payload)
	resp, err := http.Post(TraceServiceURL+"/transfers/"+hop, "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Logf("Failed to relay via %s: %v", hop, err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Logf("Relay via %s failed with status: %d", hop, resp.StatusCode)
	}
}
