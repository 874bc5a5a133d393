package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

func main() {
	serverAddr := flag.String("server", "http://127.0.0.1:8080", "Address of the exchange server")
	action := flag.String("action", "place", "Action to perform: ['place', 'cancel', 'bbo', 'l2']")

	symbol := flag.String("symbol", "BTC-USD", "Trading pair symbol")
	sideStr := flag.String("side", "buy", "Order side: 'buy' or 'sell'")
	typeStr := flag.String("type", "limit", "Order type: 'market', 'limit', 'ioc' or 'fok'")
	price := flag.String("price", "", "Limit price (required for limit/ioc/fok)")
	qtyStr := flag.String("qty", "10", "Quantity, or comma-separated list (e.g. 10,20,50)")

	orderID := flag.String("order-id", "", "Order id to cancel")
	depth := flag.Int("depth", 10, "Depth for the 'l2' action")

	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}

	switch strings.ToLower(*action) {
	case "place":
		for _, qty := range parseQuantities(*qtyStr) {
			result, err := placeOrder(client, *serverAddr, *symbol, *sideStr, *typeStr, *price, qty)
			if err != nil {
				log.Printf("place order failed (qty=%s): %v", qty, err)
				continue
			}
			fmt.Printf("-> order %s status=%s filled=%s remaining=%s trades=%d\n",
				result.OrderID, result.Status, result.FilledQuantity, result.RemainingQuantity, len(result.Trades))
			time.Sleep(5 * time.Millisecond)
		}

	case "cancel":
		if *orderID == "" {
			log.Fatal("-order-id is required for cancel")
		}
		result, err := cancelOrder(client, *serverAddr, *symbol, *orderID)
		if err != nil {
			log.Fatalf("cancel failed: %v", err)
		}
		fmt.Printf("-> order %s status=%s\n", result.OrderID, result.Status)

	case "bbo":
		snap, err := fetchBBO(client, *serverAddr, *symbol)
		if err != nil {
			log.Fatalf("bbo fetch failed: %v", err)
		}
		fmt.Printf("%s bid=%v/%v ask=%v/%v\n", snap.Symbol, deref(snap.BestBid), deref(snap.BestBidQuantity), deref(snap.BestAsk), deref(snap.BestAskQuantity))

	case "l2":
		snap, err := fetchL2(client, *serverAddr, *symbol, *depth)
		if err != nil {
			log.Fatalf("l2 fetch failed: %v", err)
		}
		fmt.Printf("%s bids=%v asks=%v\n", snap.Symbol, snap.Bids, snap.Asks)

	default:
		log.Fatalf("unknown action: %s", *action)
	}
}

func parseQuantities(input string) []string {
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

type submitResponse struct {
	OrderID           string  `json:"order_id"`
	Status            string  `json:"status"`
	FilledQuantity    string  `json:"filled_quantity"`
	RemainingQuantity string  `json:"remaining_quantity"`
	Trades            []any   `json:"trades"`
	Timestamp         string  `json:"timestamp"`
}

func placeOrder(client *http.Client, addr, symbol, side, orderType, price, qty string) (*submitResponse, error) {
	body := map[string]string{
		"symbol":     symbol,
		"order_type": strings.ToLower(orderType),
		"side":       strings.ToLower(side),
		"quantity":   qty,
	}
	if price != "" {
		body["price"] = price
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	resp, err := client.Post(addr+"/orders", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return &out, fmt.Errorf("server returned %d: status=%s", resp.StatusCode, out.Status)
	}
	return &out, nil
}

type cancelResponse struct {
	OrderID   string `json:"order_id"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Detail    string `json:"detail"`
}

func cancelOrder(client *http.Client, addr, symbol, orderID string) (*cancelResponse, error) {
	req, err := http.NewRequest(http.MethodDelete, addr+"/orders/"+url.PathEscape(symbol)+"/"+url.PathEscape(orderID), nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out cancelResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, out.Detail)
	}
	return &out, nil
}

type bboResponse struct {
	Symbol          string  `json:"symbol"`
	BestBid         *string `json:"best_bid"`
	BestBidQuantity *string `json:"best_bid_quantity"`
	BestAsk         *string `json:"best_ask"`
	BestAskQuantity *string `json:"best_ask_quantity"`
}

func fetchBBO(client *http.Client, addr, symbol string) (*bboResponse, error) {
	resp, err := client.Get(addr + "/books/" + url.PathEscape(symbol) + "/bbo")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return decodeOrError[bboResponse](resp)
}

type l2Response struct {
	Symbol string      `json:"symbol"`
	Bids   [][2]string `json:"bids"`
	Asks   [][2]string `json:"asks"`
}

func fetchL2(client *http.Client, addr, symbol string, depth int) (*l2Response, error) {
	resp, err := client.Get(addr + "/books/" + url.PathEscape(symbol) + "/l2?depth=" + strconv.Itoa(depth))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return decodeOrError[l2Response](resp)
}

func decodeOrError[T any](resp *http.Response) (*T, error) {
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func deref(s *string) string {
	if s == nil {
		return "null"
	}
	return *s
}
