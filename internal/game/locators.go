package game

import (
	"fmt"
	"strconv"

	"github.com/ppiankov/casework/internal/browser"
)

// Menus
const (
	cityMenu      browser.Locator = "//span[@class='city']"
	policeMenu    browser.Locator = "//a[normalize-space()='']//span[@class='police']"
	policeIcon    browser.Locator = "//span[@class='police']"
	incomeMenu    browser.Locator = "//span[@class='income']"
	phonebookLink browser.Locator = "//*[@class='business phone_book']"
	dutiesLink    browser.Locator = "//a[normalize-space()='Police Duties']"
	registerLink  browser.Locator = "//a[normalize-space()='Emergency call register']"
	reportedLink  browser.Locator = "//a[normalize-space()='Reported cases']"
	inTrayLink    browser.Locator = "//a[normalize-space()='In-tray']"
	recordsLink   browser.Locator = "//a[normalize-space()='Records database']"
)

// Police screens
const (
	failBox        browser.Locator = "//div[@id='fail']"
	contentRoot    browser.Locator = "//div[@id='content']"
	caseBody       browser.Locator = "//*[@id='content']/div[@id='pd']/div[@id='shop_holder']/div[@id='holder_content']/div[@class='body']"
	unassignedLink browser.Locator = "//a[contains(@href, 'display=unassigned') and contains(., 'UNASSIGNED CASES')]"
	selectButton   browser.Locator = "//input[@type='submit' and (contains(@value,'Select Case') or normalize-space(@value)='Select')]"
	suspectInput   browser.Locator = "//input[@name='suspect']"
	noEvidenceBox  browser.Locator = "//*[@id='noevidence']"
	travelSubmit   browser.Locator = "//*[@id='pd']/div[@class='body']/p[3]/input[@class='submit']"
	playerName     browser.Locator = "//div[@id='nav_right']/div[normalize-space(text())='Name']/following-sibling::div[1]/a"
	registerTable  browser.Locator = "//table[@id='casestable']"
)

// Other screens
const (
	searchDNAButton   browser.Locator = "//input[@type='submit' and @value='Search DNA Records']"
	searchDNALegacy   browser.Locator = "//input[@name='b1']"
	addEvidenceButton browser.Locator = "//input[@type='submit' and @value='Add to Case Evidence']"
	addEvidenceLegacy browser.Locator = "//input[@name='B1']"
	fingerprintOption browser.Locator = "//input[@name='fingerprint']"
	phonebookInput    browser.Locator = "//*[@id='AutoNumber4']/tbody/tr[5]/td[@class='s1'][2]/p/input"
	phonebookSubmit   browser.Locator = "//*[@id='AutoNumber4']/tbody/tr[7]/td[@class='s1'][2]/p/input"
	lastOnlineCell    browser.Locator = "//td[@class='title' and (contains(normalize-space(),'Last online') or contains(normalize-space(),'Last activity'))]/following-sibling::td[1]"
	forensicsDuty     browser.Locator = "//input[@value='forensics']"
	dutySubmit        browser.Locator = "//input[@value='Submit']"
	headerTime        browser.Locator = "//*[@id='header_time']/div"
	actionTimer       browser.Locator = "//div[@id='user_timers_holder']/div[contains(@title, 'Next Action')]/form/span[@class='donation_timer']"
)

// timerEndAttribute holds the game time a timer runs out
const timerEndAttribute = "data-date-end"

// Case action buttons, numbered as they appear in the links bar
const (
	buttonClose  = 1
	buttonBury   = 2
	buttonReturn = 3
	buttonTravel = 4
	buttonFire   = 5
)

func caseButton(n int) browser.Locator {
	return browser.Locator("//*[@id='pd']//div[@class='links']/input[" + strconv.Itoa(n) + "]")
}

// Torch cases carry the extra fire investigation button, shifting the rest
func dustButton(torch bool) browser.Locator { return caseButton(shifted(5, torch)) }
func swabButton(torch bool) browser.Locator { return caseButton(shifted(6, torch)) }
func updateButton(torch bool) browser.Locator { return caseButton(shifted(7, torch)) }

func shifted(n int, torch bool) int {
	if torch {
		return n + 1
	}
	return n
}

func caseRadio(caseID int) browser.Locator {
	return browser.Locator(fmt.Sprintf("//tr[td[1][contains(normalize-space(), '%d')]]//input[@type='radio' and contains(@name,'case')]", caseID))
}

func profileLink(name string) browser.Locator {
	return browser.Locator(fmt.Sprintf("//a[contains(@href, 'username=%s')]", name))
}
