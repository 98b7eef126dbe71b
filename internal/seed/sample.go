package seed

import "geosearch-api/internal/models"

// SampleRestaurants returns the demo data set: twelve restaurants around lower Manhattan.
func SampleRestaurants() []models.Restaurant {
	return []models.Restaurant{
		{ID: "rest1", Name: "The Italian Kitchen", Address: "123 Main St, New York, NY", Type: "Italian", Description: "Authentic Italian cuisine", Lat: 40.7128, Lng: -74.0060},
		{ID: "rest2", Name: "Sushi Paradise", Address: "456 Broadway, New York, NY", Type: "Japanese", Description: "Fresh sushi and Japanese specialties", Lat: 40.7228, Lng: -74.0160},
		{ID: "rest3", Name: "Taco Fiesta", Address: "789 Park Ave, New York, NY", Type: "Mexican", Description: "Authentic Mexican street food", Lat: 40.7028, Lng: -73.9960},
		{ID: "rest4", Name: "Burger Joint", Address: "321 Hudson St, New York, NY", Type: "American", Description: "Classic American burgers and fries", Lat: 40.7178, Lng: -74.0160},
		{ID: "rest5", Name: "Golden Dragon", Address: "555 Canal St, New York, NY", Type: "Chinese", Description: "Traditional Chinese cuisine", Lat: 40.7078, Lng: -73.9960},
		{ID: "rest6", Name: "Paris Bistro", Address: "888 Fifth Ave, New York, NY", Type: "French", Description: "Elegant French dining experience", Lat: 40.7328, Lng: -74.0060},
		{ID: "rest7", Name: "Mediterranean Delight", Address: "777 Lexington Ave, New York, NY", Type: "Mediterranean", Description: "Fresh Mediterranean dishes", Lat: 40.7128, Lng: -73.9860},
		{ID: "rest8", Name: "Spice of India", Address: "999 Madison Ave, New York, NY", Type: "Indian", Description: "Authentic Indian curries", Lat: 40.7028, Lng: -74.0260},
		{ID: "rest9", Name: "Bangkok Kitchen", Address: "444 West St, New York, NY", Type: "Thai", Description: "Spicy Thai cuisine", Lat: 40.7228, Lng: -74.0260},
		{ID: "rest10", Name: "Brazilian Grill", Address: "222 East St, New York, NY", Type: "Brazilian", Description: "Authentic Brazilian barbecue", Lat: 40.6928, Lng: -74.0060},
		{ID: "rest11", Name: "Greek Islands", Address: "333 South St, New York, NY", Type: "Greek", Description: "Traditional Greek mezze", Lat: 40.7128, Lng: -74.0260},
		{ID: "rest12", Name: "Seoul BBQ", Address: "666 North St, New York, NY", Type: "Korean", Description: "Korean BBQ and authentic dishes", Lat: 40.7328, Lng: -73.9960},
	}
}
