package chart

import "testing"

func TestWalletDeterministic(t *testing.T) {
	id := "2fbd3c41-9ef2-44f1-9d3a-0a0c6f2f9a11"
	first := Wallet(id)
	for i := 0; i < 10; i++ {
		if got := Wallet(id); got != first {
			t.Fatalf("wallet address changed: %s vs %s", got, first)
		}
	}
	if first != "users:2fbd3c419ef244f19d3a0a0c6f2f9a11:wallet" {
		t.Fatalf("unexpected wallet address: %s", first)
	}
}

func TestWalletDistinctUsers(t *testing.T) {
	ids := []string{
		"57cbd59c-70a1-4a9f-9a9f-111111111111",
		"57cbd59c-70a1-4a9f-9a9f-222222222222",
		"9a3af1e0-0a5d-4f4a-8a6e-333333333333",
	}
	seen := map[string]string{}
	for _, id := range ids {
		addr := Wallet(id)
		if prev, ok := seen[addr]; ok {
			t.Fatalf("address collision between %s and %s: %s", prev, id, addr)
		}
		seen[addr] = id
	}
}

func TestDepositStableAcrossRedelivery(t *testing.T) {
	if Deposit("evt_1") != Deposit("evt_1") {
		t.Fatal("deposit address not stable for the same event")
	}
	if got := Deposit("evt_1"); got != "deposits:evt_1" {
		t.Fatalf("unexpected deposit address: %s", got)
	}
	if Deposit("evt_1") == Deposit("evt_2") {
		t.Fatal("distinct events mapped to the same deposit account")
	}
}

func TestNormalizeStripsSeparators(t *testing.T) {
	if got := Wallet("u-1.2/3"); got != "users:u123:wallet" {
		t.Fatalf("unexpected normalized address: %s", got)
	}
}
