package ai

import "github.com/lithammer/dedent"

var listingPrompt = dedent.Dedent(`
	Analyse the car image and extract the following information:
	1. Make (manufacturer)
	2. Model
	3. Year (approximately)
	4. Color
	5. Body type (SUV, Sedan, Hatchback, etc)
	6. Mileage
	7. Fuel type (your best guess)
	8. Transmission type (your best guess)
	9. Price (your best guess)
	10. Short description suitable for a car listing

	Format your response as a clean JSON object with these fields:
	{
	  "make": "",
	  "model": "",
	  "year": 0000,
	  "color": "",
	  "price": "",
	  "mileage": "",
	  "bodyType": "",
	  "fuelType": "",
	  "transmission": "",
	  "description": "",
	  "confidence": 0.0
	}

	For confidence, provide a value between 0 and 1 representing how
	confident you are in your overall identification.
	Only respond with the JSON object, nothing else.`)

var searchPrompt = dedent.Dedent(`
	Analyze this car image and extract the following information for a search query:
	1. Make (manufacturer)
	2. Body type (SUV, Sedan, Hatchback, etc)
	3. Color

	Format your response as a clean JSON object with these fields:
	{
	  "make": "",
	  "bodyType": "",
	  "color": "",
	  "confidence": 0.0
	}

	For confidence, provide a value between 0 and 1 representing how
	confident you are in your overall identification.
	Only respond with the JSON object, nothing else.`)

// promptFor returns the prompt text for a variant.
func promptFor(v PromptVariant) string {
	if v == PromptSearch {
		return searchPrompt
	}
	return listingPrompt
}
